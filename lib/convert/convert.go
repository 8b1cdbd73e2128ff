// Copyright 2023 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package convert converts a GnuCash book into beancount directives.
package convert

import (
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// Converter converts a book.
type Converter struct {
	book   *gnucash.Book
	config Config
	today  time.Time

	// Progress, if not nil, is called after each converted transaction.
	Progress func(done, total int)
}

// New creates a new converter. Accounts without splits are opened at
// today's date.
func New(book *gnucash.Book, config Config, today time.Time) *Converter {
	return &Converter{
		book:   book,
		config: config,
		today:  date.Day(today),
	}
}

// Convert converts the book into an ordered list of directives: options,
// commodities, accounts, transactions grouped by their main account, and
// prices grouped by commodity.
func (c *Converter) Convert() ([]beancount.Directive, error) {
	accounts := c.book.AccountsInUse()
	var (
		opens  = make([]*beancount.Open, 0, len(accounts))
		byGUID = make(map[string]*beancount.Open, len(accounts))
		groups = make(map[string][]beancount.Directive, len(accounts))
	)
	for _, a := range accounts {
		open, err := c.ConvertAccount(a)
		if err != nil {
			return nil, err
		}
		opens = append(opens, open)
		byGUID[a.GUID] = open
		groups[open.Account] = nil
	}

	firstDate := c.today
	if len(c.book.Transactions) > 0 {
		firstDate = date.Day(c.book.Transaction(0).Date)
	}
	commodities, used, err := c.CollectCommodities(accounts, firstDate)
	if err != nil {
		return nil, err
	}

	total := len(c.book.Transactions)
	for i := range c.book.Transactions {
		t := c.book.Transaction(i)
		main, err := c.mainAccount(t)
		if err != nil {
			return nil, err
		}
		open, ok := byGUID[main.GUID]
		if !ok {
			return nil, fmt.Errorf("transaction %s (%s): %w %s", t.GUID, t.Description, ErrUnmappedAccount, main.FullName)
		}
		trx, err := c.ConvertTransaction(t, byGUID)
		if err != nil {
			return nil, err
		}
		groups[open.Account] = append(groups[open.Account], trx)
		if c.Progress != nil {
			c.Progress(i+1, total)
		}
	}

	prices, err := c.ExportPrices(used)
	if err != nil {
		return nil, err
	}

	res := []beancount.Directive{
		&beancount.Option{Name: "operating_currency", Value: c.config.Currency},
		&beancount.Option{Name: "inferred_tolerance_default", Value: "*:" + c.config.Tolerance.String()},
		&beancount.Option{Name: "booking_method", Value: c.config.BookingMethod},
		beancount.Heading(1, "Commodities"),
	}
	for _, cm := range commodities {
		res = append(res, cm)
	}
	res = append(res, beancount.Heading(1, "Accounts"))
	for _, open := range opens {
		res = append(res, open)
	}
	names := maps.Keys(groups)
	slices.Sort(names)
	for _, name := range names {
		res = append(res, beancount.Heading(2, name))
		res = append(res, groups[name]...)
	}
	res = append(res, beancount.Heading(1, "Prices"))
	for _, block := range prices {
		res = append(res, beancount.Heading(2, block.Symbol))
		for _, p := range block.Prices {
			res = append(res, p)
		}
	}
	return res, nil
}
