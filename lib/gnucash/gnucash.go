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

// Package gnucash holds an in-memory GnuCash book. The book is an arena:
// accounts, transactions and splits live in slices and refer to each other
// by index.
package gnucash

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sboehler/gnucash2beancount/lib/common/compare"
)

// AccountType is the type tag of a GnuCash account.
type AccountType string

// The account types known to GnuCash.
const (
	ROOT       AccountType = "ROOT"
	ASSET      AccountType = "ASSET"
	BANK       AccountType = "BANK"
	CASH       AccountType = "CASH"
	CHECKING   AccountType = "CHECKING"
	SAVINGS    AccountType = "SAVINGS"
	MONEYMRKT  AccountType = "MONEYMRKT"
	CREDIT     AccountType = "CREDIT"
	CREDITLINE AccountType = "CREDITLINE"
	LIABILITY  AccountType = "LIABILITY"
	STOCK      AccountType = "STOCK"
	MUTUAL     AccountType = "MUTUAL"
	CURRENCY   AccountType = "CURRENCY"
	INCOME     AccountType = "INCOME"
	EXPENSE    AccountType = "EXPENSE"
	EQUITY     AccountType = "EQUITY"
	RECEIVABLE AccountType = "RECEIVABLE"
	PAYABLE    AccountType = "PAYABLE"
	TRADING    AccountType = "TRADING"
)

// CurrencyNamespace is the commodity namespace of ISO 4217 currencies.
const CurrencyNamespace = "CURRENCY"

// legacyCurrencyNamespace is used by books written before GnuCash 2.2.
const legacyCurrencyNamespace = "ISO4217"

// Commodity is a currency or security. Commodities are interned by the
// builder, so two commodities are the same iff their pointers are equal.
type Commodity struct {
	Namespace string
	Mnemonic  string
	FullName  string
}

func (c *Commodity) String() string {
	return c.Namespace + ":" + c.Mnemonic
}

// Rational is an exact GnuCash numeric.
type Rational struct {
	Num, Denom int64
}

// ParseRational parses "n/d" or "n".
func ParseRational(s string) (Rational, error) {
	num, denom, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("invalid numeric %q: %w", s, err)
	}
	if !found {
		return Rational{Num: n, Denom: 1}, nil
	}
	d, err := strconv.ParseInt(denom, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("invalid numeric %q: %w", s, err)
	}
	return Rational{Num: n, Denom: d}, nil
}

// String renders the numeric the way GnuCash does.
func (r Rational) String() string {
	if r.Denom == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Denom)
}

// Account is a GnuCash account.
type Account struct {
	GUID        string
	Name        string
	FullName    string
	Type        AccountType
	Code        string
	Description string
	Commodity   *Commodity
	Parent      int
	Children    []int
	Splits      []int
}

// IsLeaf returns whether the account has no children.
func (a *Account) IsLeaf() bool {
	return len(a.Children) == 0
}

// Transaction is a GnuCash transaction.
type Transaction struct {
	GUID        string
	Date        time.Time
	Description string
	Currency    *Commodity
	Splits      []int
}

// Split is one leg of a transaction. Quantity is denominated in the
// account's commodity, Value in the transaction's currency.
type Split struct {
	GUID        string
	Transaction int
	Account     int
	Memo        string
	Quantity    Rational
	Value       Rational
}

// Price is a sample of the price database.
type Price struct {
	Commodity *Commodity
	Currency  *Commodity
	Time      time.Time
	Value     Rational
}

// Book is a loaded GnuCash book.
type Book struct {
	Root         int
	Accounts     []Account
	Transactions []Transaction
	Splits       []Split

	namespaces  []string
	commodities map[string][]*Commodity
	prices      []Price
}

// Account returns the account with the given index.
func (b *Book) Account(i int) *Account {
	return &b.Accounts[i]
}

// Transaction returns the transaction with the given index.
func (b *Book) Transaction(i int) *Transaction {
	return &b.Transactions[i]
}

// Split returns the split with the given index.
func (b *Book) Split(i int) *Split {
	return &b.Splits[i]
}

// Namespaces returns the namespaces of the commodity table, sorted.
func (b *Book) Namespaces() []string {
	return b.namespaces
}

// Commodities returns the commodities of a namespace, sorted by mnemonic.
func (b *Book) Commodities(namespace string) []*Commodity {
	return b.commodities[namespace]
}

// Descendants returns all descendants of the root account in depth-first
// order, with siblings ordered by code and name.
func (b *Book) Descendants() []*Account {
	var res []*Account
	var visit func(i int)
	visit = func(i int) {
		for _, c := range b.Accounts[i].Children {
			res = append(res, &b.Accounts[c])
			visit(c)
		}
	}
	visit(b.Root)
	return res
}

// AccountsInUse returns the descendants of the root which are leaves or
// carry splits. Placeholder parents without splits are dropped.
func (b *Book) AccountsInUse() []*Account {
	var res []*Account
	for _, a := range b.Descendants() {
		if a.IsLeaf() || len(a.Splits) > 0 {
			res = append(res, a)
		}
	}
	return res
}

// Prices returns the price samples of commodity in currency, ordered by
// time.
func (b *Book) Prices(commodity, currency *Commodity) []Price {
	var res []Price
	for _, p := range b.prices {
		if p.Commodity == commodity && p.Currency == currency {
			res = append(res, p)
		}
	}
	compare.Sort(res, func(p1, p2 Price) compare.Order {
		return compare.Time(p1.Time, p2.Time)
	})
	return res
}
