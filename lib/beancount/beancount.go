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

// Package beancount models the directives of a beancount file.
package beancount

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the top-level category of an account.
type AccountType int

const (
	// ASSETS represents an asset account.
	ASSETS AccountType = iota
	// LIABILITIES represents a liability account.
	LIABILITIES
	// EQUITY represents an equity account.
	EQUITY
	// INCOME represents an income account.
	INCOME
	// EXPENSES represents an expenses account.
	EXPENSES
)

func (t AccountType) String() string {
	switch t {
	case ASSETS:
		return "Assets"
	case LIABILITIES:
		return "Liabilities"
	case EQUITY:
		return "Equity"
	case INCOME:
		return "Income"
	case EXPENSES:
		return "Expenses"
	}
	return ""
}

var accountTypes = map[string]AccountType{
	"Assets":      ASSETS,
	"Liabilities": LIABILITIES,
	"Equity":      EQUITY,
	"Expenses":    EXPENSES,
	"Income":      INCOME,
}

// ParseAccountType parses the name of a top-level category.
func ParseAccountType(s string) (AccountType, error) {
	t, ok := accountTypes[s]
	if !ok {
		return 0, fmt.Errorf("invalid account type %q", s)
	}
	return t, nil
}

// FlagCleared marks a completed transaction.
const FlagCleared = "*"

// Meta is a metadata entry.
type Meta struct {
	Key, Value string
}

// Metadata is an ordered list of metadata entries.
type Metadata []Meta

// Get returns the value of the first entry with the given key.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Amount is a number of units of a currency or commodity.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// Cost is the cost basis of a lot. A zero Date leaves the lot to be
// matched by the booking method.
type Cost struct {
	Number   decimal.Decimal
	Currency string
	Date     time.Time
	Label    string
}

// HasDate returns whether the cost pins the acquisition date.
func (c Cost) HasDate() bool {
	return !c.Date.IsZero()
}

// Posting is a leg of a transaction. Plain postings only carry units.
type Posting struct {
	Account string
	Units   Amount
	Cost    *Cost
	Price   *Amount
	Total   *Amount
	Meta    Metadata
}

// Weight returns the amount the posting contributes to the balance of its
// transaction.
func (p Posting) Weight() Amount {
	switch {
	case p.Total != nil:
		n := p.Total.Number.Abs().Mul(decimal.NewFromInt(int64(p.Units.Number.Sign())))
		return Amount{Number: n, Currency: p.Total.Currency}
	case p.Cost != nil:
		return Amount{Number: p.Units.Number.Mul(p.Cost.Number), Currency: p.Cost.Currency}
	case p.Price != nil:
		return Amount{Number: p.Units.Number.Mul(p.Price.Number), Currency: p.Price.Currency}
	}
	return p.Units
}

// Directive is an entry of a beancount file. The set of directives is
// closed: Option, Text, Open, Commodity, Transaction and Price.
type Directive interface {
	directive()
}

var (
	_ Directive = (*Option)(nil)
	_ Directive = (*Text)(nil)
	_ Directive = (*Open)(nil)
	_ Directive = (*Commodity)(nil)
	_ Directive = (*Transaction)(nil)
	_ Directive = (*Price)(nil)
)

// Option is a file-level option.
type Option struct {
	Name, Value string
}

// Text is a verbatim line, such as a section header.
type Text struct {
	Line string
}

// Heading creates an org-mode style section header of the given level.
func Heading(level int, title string) *Text {
	return &Text{Line: strings.Repeat("*", level) + " " + title}
}

// Open declares an account.
type Open struct {
	Date       time.Time
	Account    string
	Currencies []string
	Meta       Metadata
}

// Commodity declares a commodity.
type Commodity struct {
	Date   time.Time
	Symbol string
	Meta   Metadata
}

// Transaction is a balanced set of postings.
type Transaction struct {
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Postings  []Posting
}

// Price is a price point of a commodity.
type Price struct {
	Date      time.Time
	Commodity string
	Amount    Amount
}

func (*Option) directive()      {}
func (*Text) directive()        {}
func (*Open) directive()        {}
func (*Commodity) directive()   {}
func (*Transaction) directive() {}
func (*Price) directive()       {}
