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

package gnucash

import (
	"fmt"
	"strings"
	"time"

	"github.com/sboehler/gnucash2beancount/lib/common/compare"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AccountRecord is an account as stored in a GnuCash file.
type AccountRecord struct {
	GUID        string
	Name        string
	Type        AccountType
	Parent      string
	Code        string
	Description string
	Commodity   *Commodity
}

// TransactionRecord is a transaction as stored in a GnuCash file.
type TransactionRecord struct {
	GUID        string
	Date        time.Time
	Description string
	Currency    *Commodity
}

// SplitRecord is a split as stored in a GnuCash file.
type SplitRecord struct {
	GUID        string
	Transaction string
	Account     string
	Memo        string
	Quantity    Rational
	Value       Rational
}

// PriceRecord is a price as stored in a GnuCash file.
type PriceRecord struct {
	Commodity *Commodity
	Currency  *Commodity
	Time      time.Time
	Value     Rational
}

type commodityKey struct {
	namespace, mnemonic string
}

// Builder assembles a Book from the records of a GnuCash file. Records
// refer to each other by GUID; Build resolves them into indices.
type Builder struct {
	separator    string
	root         string
	commodities  map[commodityKey]*Commodity
	accounts     []AccountRecord
	transactions []TransactionRecord
	splits       []SplitRecord
	prices       []PriceRecord
}

// NewBuilder creates a builder. Full account names are joined with the
// given separator.
func NewBuilder(separator string) *Builder {
	return &Builder{
		separator:   separator,
		commodities: make(map[commodityKey]*Commodity),
	}
}

// Commodity interns a commodity. A non-empty full name updates the interned
// value.
func (b *Builder) Commodity(namespace, mnemonic, fullName string) *Commodity {
	if namespace == legacyCurrencyNamespace {
		namespace = CurrencyNamespace
	}
	key := commodityKey{namespace, mnemonic}
	c, ok := b.commodities[key]
	if !ok {
		c = &Commodity{Namespace: namespace, Mnemonic: mnemonic}
		b.commodities[key] = c
	}
	if fullName != "" {
		c.FullName = fullName
	}
	return c
}

// SetRoot sets the GUID of the root account. Without it, Build uses the
// only parentless account of type ROOT.
func (b *Builder) SetRoot(guid string) {
	b.root = guid
}

func (b *Builder) AddAccount(a AccountRecord) {
	b.accounts = append(b.accounts, a)
}

func (b *Builder) AddTransaction(t TransactionRecord) {
	b.transactions = append(b.transactions, t)
}

func (b *Builder) AddSplit(s SplitRecord) {
	b.splits = append(b.splits, s)
}

func (b *Builder) AddPrice(p PriceRecord) {
	b.prices = append(b.prices, p)
}

// Build links the records. Accounts which are not reachable from the root
// belong to scheduled transaction templates; they are dropped together with
// their transactions.
func (b *Builder) Build() (*Book, error) {
	byGUID := make(map[string]*AccountRecord, len(b.accounts))
	children := make(map[string][]*AccountRecord)
	for i := range b.accounts {
		a := &b.accounts[i]
		if _, ok := byGUID[a.GUID]; ok {
			return nil, fmt.Errorf("duplicate account %s", a.GUID)
		}
		byGUID[a.GUID] = a
		if a.Parent != "" {
			children[a.Parent] = append(children[a.Parent], a)
		}
	}
	root, err := b.findRoot(byGUID)
	if err != nil {
		return nil, err
	}
	book := &Book{
		commodities: make(map[string][]*Commodity),
	}
	accountIndex := make(map[string]int)
	var add func(rec *AccountRecord, parent int, path []string)
	add = func(rec *AccountRecord, parent int, path []string) {
		index := len(book.Accounts)
		accountIndex[rec.GUID] = index
		book.Accounts = append(book.Accounts, Account{
			GUID:        rec.GUID,
			Name:        rec.Name,
			FullName:    strings.Join(path, b.separator),
			Type:        rec.Type,
			Code:        rec.Code,
			Description: rec.Description,
			Commodity:   rec.Commodity,
			Parent:      parent,
		})
		if parent >= 0 {
			book.Accounts[parent].Children = append(book.Accounts[parent].Children, index)
		}
		cs := children[rec.GUID]
		compare.Sort(cs, compareSiblings)
		for _, c := range cs {
			add(c, index, append(path[:len(path):len(path)], c.Name))
		}
	}
	add(root, -1, nil)
	book.Root = accountIndex[root.GUID]

	if err := b.linkTransactions(book, byGUID, accountIndex); err != nil {
		return nil, err
	}

	for _, c := range b.commodities {
		book.commodities[c.Namespace] = append(book.commodities[c.Namespace], c)
	}
	book.namespaces = maps.Keys(book.commodities)
	slices.Sort(book.namespaces)
	for _, cs := range book.commodities {
		compare.Sort(cs, compare.By(func(c *Commodity) string { return c.Mnemonic }))
	}
	for _, p := range b.prices {
		book.prices = append(book.prices, Price(p))
	}
	return book, nil
}

func compareSiblings(a1, a2 *AccountRecord) compare.Order {
	if o := compare.Ordered(a1.Code, a2.Code); o != compare.Equal {
		return o
	}
	return compare.Ordered(a1.Name, a2.Name)
}

func (b *Builder) findRoot(byGUID map[string]*AccountRecord) (*AccountRecord, error) {
	if b.root != "" {
		root, ok := byGUID[b.root]
		if !ok {
			return nil, fmt.Errorf("root account %s not found", b.root)
		}
		return root, nil
	}
	var root *AccountRecord
	for i := range b.accounts {
		a := &b.accounts[i]
		if a.Type != ROOT || a.Parent != "" {
			continue
		}
		if root != nil {
			return nil, fmt.Errorf("book has multiple root accounts: %s, %s", root.GUID, a.GUID)
		}
		root = a
	}
	if root == nil {
		return nil, fmt.Errorf("book has no root account")
	}
	return root, nil
}

func (b *Builder) linkTransactions(book *Book, byGUID map[string]*AccountRecord, accountIndex map[string]int) error {
	transactions := make(map[string]*TransactionRecord, len(b.transactions))
	for i := range b.transactions {
		transactions[b.transactions[i].GUID] = &b.transactions[i]
	}
	splits := make(map[string][]*SplitRecord)
	templates := make(map[string]bool)
	for i := range b.splits {
		s := &b.splits[i]
		if _, ok := transactions[s.Transaction]; !ok {
			return fmt.Errorf("split %s references unknown transaction %s", s.GUID, s.Transaction)
		}
		if _, ok := byGUID[s.Account]; !ok {
			return fmt.Errorf("split %s references unknown account %s", s.GUID, s.Account)
		}
		if _, ok := accountIndex[s.Account]; !ok {
			templates[s.Transaction] = true
		}
		splits[s.Transaction] = append(splits[s.Transaction], s)
	}

	var trxs []*TransactionRecord
	for i := range b.transactions {
		if t := &b.transactions[i]; !templates[t.GUID] {
			trxs = append(trxs, t)
		}
	}
	compare.Sort(trxs, func(t1, t2 *TransactionRecord) compare.Order {
		return compare.Time(t1.Date, t2.Date)
	})
	for _, t := range trxs {
		index := len(book.Transactions)
		trx := Transaction{
			GUID:        t.GUID,
			Date:        t.Date,
			Description: t.Description,
			Currency:    t.Currency,
		}
		for _, s := range splits[t.GUID] {
			account := accountIndex[s.Account]
			split := len(book.Splits)
			book.Splits = append(book.Splits, Split{
				GUID:        s.GUID,
				Transaction: index,
				Account:     account,
				Memo:        s.Memo,
				Quantity:    s.Quantity,
				Value:       s.Value,
			})
			trx.Splits = append(trx.Splits, split)
			book.Accounts[account].Splits = append(book.Accounts[account].Splits, split)
		}
		book.Transactions = append(book.Transactions, trx)
	}
	return nil
}
