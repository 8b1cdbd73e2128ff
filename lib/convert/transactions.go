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

package convert

import (
	"fmt"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// legKind classifies a split of a transaction.
type legKind int

const (
	// plainLeg is denominated in the transaction currency.
	plainLeg legKind = iota
	// zeroLeg is a foreign leg without units, e.g. a realized gain.
	zeroLeg
	// acquisitionLeg opens a new lot.
	acquisitionLeg
	// disposalLeg reduces existing lots.
	disposalLeg
	// conversionLeg exchanges one currency for another.
	conversionLeg
)

func (k legKind) String() string {
	switch k {
	case plainLeg:
		return "plain"
	case zeroLeg:
		return "zero"
	case acquisitionLeg:
		return "acquisition"
	case disposalLeg:
		return "disposal"
	case conversionLeg:
		return "conversion"
	}
	return fmt.Sprintf("legKind(%d)", int(k))
}

// classifyLeg decides how a split is booked, given whether its commodity
// is the transaction currency, the sign of its quantity and whether its
// commodity is a currency.
func classifyLeg(sameCurrency bool, sign int, isCurrency bool) legKind {
	switch {
	case sameCurrency:
		return plainLeg
	case sign == 0:
		return zeroLeg
	case isCurrency:
		return conversionLeg
	case sign > 0:
		return acquisitionLeg
	default:
		return disposalLeg
	}
}

// ConvertTransaction converts a transaction. The accounts map holds the
// open directives of all accounts by GUID.
func (c *Converter) ConvertTransaction(t *gnucash.Transaction, accounts map[string]*beancount.Open) (*beancount.Transaction, error) {
	if t.Currency == nil {
		return nil, fmt.Errorf("transaction %s (%s) has no currency", t.GUID, t.Description)
	}
	base, err := NormalizeCommodity(t.Currency.Mnemonic)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.GUID, err)
	}
	res := &beancount.Transaction{
		Date:      date.Day(t.Date),
		Flag:      beancount.FlagCleared,
		Narration: t.Description,
	}
	for _, i := range t.Splits {
		posting, err := c.convertSplit(c.book.Split(i), base, res, accounts)
		if err != nil {
			return nil, fmt.Errorf("transaction %s (%s): %w", t.GUID, t.Description, err)
		}
		res.Postings = append(res.Postings, posting)
	}
	return res, nil
}

func (c *Converter) convertSplit(s *gnucash.Split, base string, trx *beancount.Transaction, accounts map[string]*beancount.Open) (beancount.Posting, error) {
	a := c.book.Account(s.Account)
	open, ok := accounts[a.GUID]
	if !ok {
		return beancount.Posting{}, fmt.Errorf("%w %s", ErrUnmappedAccount, a.FullName)
	}
	if a.Commodity == nil || len(open.Currencies) == 0 {
		return beancount.Posting{}, fmt.Errorf("account %s has no commodity", a.FullName)
	}
	amount, err := normalizeRational(s.Quantity)
	if err != nil {
		return beancount.Posting{}, err
	}
	posting := beancount.Posting{
		Account: open.Account,
		Units:   beancount.Amount{Number: amount, Currency: open.Currencies[0]},
	}
	if s.Memo != "" {
		posting.Meta = beancount.Metadata{{Key: "memo", Value: s.Memo}}
	}
	kind := classifyLeg(open.Currencies[0] == base, amount.Sign(), a.Commodity.Namespace == c.config.CurrencyNamespace)
	if kind == plainLeg {
		return posting, nil
	}
	value, err := normalizeRational(s.Value)
	if err != nil {
		return beancount.Posting{}, err
	}
	posting.Total = &beancount.Amount{Number: value.Abs(), Currency: base}
	if kind == zeroLeg {
		return posting, nil
	}
	price := beancount.Amount{Number: quotient(value.Abs(), amount.Abs()), Currency: base}
	posting.Price = &price
	switch kind {
	case acquisitionLeg:
		posting.Cost = &beancount.Cost{Number: price.Number, Currency: base, Date: trx.Date}
	case disposalLeg:
		posting.Cost = &beancount.Cost{Number: price.Number, Currency: base}
	}
	return posting, nil
}

// mainAccount returns the account of the first split in the transaction
// currency, falling back to the account of the first split.
func (c *Converter) mainAccount(t *gnucash.Transaction) (*gnucash.Account, error) {
	if len(t.Splits) == 0 {
		return nil, fmt.Errorf("transaction %s (%s) has no splits", t.GUID, t.Description)
	}
	for _, i := range t.Splits {
		a := c.book.Account(c.book.Split(i).Account)
		if a.Commodity != nil && t.Currency != nil && a.Commodity.Mnemonic == t.Currency.Mnemonic {
			return a, nil
		}
	}
	return c.book.Account(c.book.Split(t.Splits[0]).Account), nil
}
