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

// Package gnucashtest provides an example GnuCash book in the SQLite and
// XML file formats.
package gnucashtest

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"testing"

	"go.uber.org/multierr"

	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"

	// use SQLite3
	_ "github.com/mattn/go-sqlite3"
)

type commodity struct {
	guid, namespace, mnemonic, fullName string
}

type account struct {
	guid, name, accountType, commodity, parent, code, description string
}

type split struct {
	guid, account, memo string
	quantity, value     [2]int64
}

type transaction struct {
	guid, currency, date, description string
	splits                            []split
}

type price struct {
	guid, commodity, currency, date string
	value                           [2]int64
}

const (
	rootGUID         = "root"
	templateRootGUID = "template-root"
)

var commodities = []commodity{
	{"usd", "CURRENCY", "USD", "US Dollar"},
	{"eur", "CURRENCY", "EUR", "Euro"},
	{"chf", "CURRENCY", "CHF", "Swiss Franc"},
	{"abc", "NASDAQ", "ABC", "ABC Corp"},
	{"3m", "NYSE", "3M", "3M Company"},
}

var accounts = []account{
	{rootGUID, "Root Account", "ROOT", "", "", "", ""},
	{"assets", "Assets", "ASSET", "usd", rootGUID, "", ""},
	{"checking", "Checking Account", "BANK", "usd", "assets", "", "Main account"},
	{"brokerage", "Brokerage", "ASSET", "usd", "assets", "", ""},
	{"abc", "ABC", "STOCK", "abc", "brokerage", "", ""},
	{"3m", "3M", "STOCK", "3m", "brokerage", "", ""},
	{"eurocash", "Euro Cash", "CASH", "eur", "assets", "", ""},
	{"expenses", "Expenses", "EXPENSE", "usd", rootGUID, "", ""},
	{"food", "Food/Drinks", "EXPENSE", "usd", "expenses", "", ""},
	{"income", "Income", "INCOME", "usd", rootGUID, "", ""},
	{"gains", "Capital Gains", "INCOME", "usd", "income", "", ""},
	{"equity", "Equity", "EQUITY", "usd", rootGUID, "", ""},
	{"opening", "Opening Balances", "EQUITY", "usd", "equity", "", ""},
	{"misc", "Misc @ Home", "EXPENSE", "usd", rootGUID, "", ""},
}

var templateAccounts = []account{
	{templateRootGUID, "Template Root", "ROOT", "", "", "", ""},
	{"template", "template", "BANK", "usd", templateRootGUID, "", ""},
}

var transactions = []transaction{
	{"t3", "usd", "2021-01-10 10:59:00", "Groceries", []split{
		{"t3s1", "food", "", [2]int64{2550, 100}, [2]int64{2550, 100}},
		{"t3s2", "checking", "", [2]int64{-2550, 100}, [2]int64{-2550, 100}},
	}},
	{"t1", "usd", "2021-01-01 10:59:00", "Opening balance", []split{
		{"t1s1", "checking", "", [2]int64{100000, 100}, [2]int64{100000, 100}},
		{"t1s2", "opening", "", [2]int64{-100000, 100}, [2]int64{-100000, 100}},
	}},
	{"t2", "usd", "2021-01-05 10:59:00", "Buy ABC", []split{
		{"t2s1", "abc", "lot 1", [2]int64{10, 1}, [2]int64{150000, 100}},
		{"t2s2", "checking", "", [2]int64{-150000, 100}, [2]int64{-150000, 100}},
	}},
	{"t4", "usd", "2021-02-01 10:59:00", "Sell ABC", []split{
		{"t4s1", "abc", "", [2]int64{-4, 1}, [2]int64{-64000, 100}},
		{"t4s2", "checking", "", [2]int64{64000, 100}, [2]int64{64000, 100}},
	}},
	{"t5", "usd", "2021-02-15 10:59:00", "Exchange to EUR", []split{
		{"t5s1", "eurocash", "", [2]int64{10000, 100}, [2]int64{12000, 100}},
		{"t5s2", "checking", "", [2]int64{-12000, 100}, [2]int64{-12000, 100}},
	}},
	{"t6", "usd", "2021-03-01 10:59:00", "Realized gain", []split{
		{"t6s1", "abc", "", [2]int64{0, 1}, [2]int64{4000, 100}},
		{"t6s2", "gains", "", [2]int64{-4000, 100}, [2]int64{-4000, 100}},
	}},
	{"t7", "eur", "2021-03-05 10:59:00", "Dinner in Paris", []split{
		{"t7s1", "eurocash", "", [2]int64{-3000, 100}, [2]int64{-3000, 100}},
		{"t7s2", "food", "tip included", [2]int64{4000, 100}, [2]int64{3000, 100}},
	}},
}

var templateTransactions = []transaction{
	{"scheduled", "usd", "2021-01-01 10:59:00", "Rent", []split{
		{"sxs1", "template", "", [2]int64{0, 1}, [2]int64{0, 1}},
	}},
}

var prices = []price{
	{"p1", "abc", "usd", "2021-02-01 00:00:00", [2]int64{16000, 100}},
	{"p2", "abc", "usd", "2021-01-05 00:00:00", [2]int64{15000, 100}},
	{"p3", "eur", "usd", "2021-02-15 00:00:00", [2]int64{12000, 10000}},
	{"p4", "usd", "eur", "2021-02-15 00:00:00", [2]int64{8333, 10000}},
	{"p5", "chf", "usd", "2021-02-15 00:00:00", [2]int64{110, 100}},
}

const schema = `
CREATE TABLE books (
	guid text(32) PRIMARY KEY NOT NULL,
	root_account_guid text(32) NOT NULL,
	root_template_guid text(32) NOT NULL
);
CREATE TABLE commodities (
	guid text(32) PRIMARY KEY NOT NULL,
	namespace text(2048) NOT NULL,
	mnemonic text(2048) NOT NULL,
	fullname text(2048),
	cusip text(2048),
	fraction integer NOT NULL,
	quote_flag integer NOT NULL,
	quote_source text(2048),
	quote_tz text(2048)
);
CREATE TABLE accounts (
	guid text(32) PRIMARY KEY NOT NULL,
	name text(2048) NOT NULL,
	account_type text(2048) NOT NULL,
	commodity_guid text(32),
	commodity_scu integer NOT NULL,
	non_std_scu integer NOT NULL,
	parent_guid text(32),
	code text(2048),
	description text(2048),
	hidden integer,
	placeholder integer
);
CREATE TABLE transactions (
	guid text(32) PRIMARY KEY NOT NULL,
	currency_guid text(32) NOT NULL,
	num text(2048) NOT NULL,
	post_date text(19),
	enter_date text(19),
	description text(2048)
);
CREATE TABLE splits (
	guid text(32) PRIMARY KEY NOT NULL,
	tx_guid text(32) NOT NULL,
	account_guid text(32) NOT NULL,
	memo text(2048) NOT NULL,
	action text(2048) NOT NULL,
	reconcile_state text(1) NOT NULL,
	reconcile_date text(19),
	value_num bigint NOT NULL,
	value_denom bigint NOT NULL,
	quantity_num bigint NOT NULL,
	quantity_denom bigint NOT NULL,
	lot_guid text(32)
);
CREATE TABLE prices (
	guid text(32) PRIMARY KEY NOT NULL,
	commodity_guid text(32) NOT NULL,
	currency_guid text(32) NOT NULL,
	date text(19) NOT NULL,
	source text(2048),
	type text(2048),
	value_num bigint NOT NULL,
	value_denom bigint NOT NULL
);
`

// Book builds the example book in memory, with ":" as the account
// separator.
func Book(t testing.TB) *gnucash.Book {
	t.Helper()
	b := gnucash.NewBuilder(":")
	cs := make(map[string]*gnucash.Commodity)
	for _, c := range commodities {
		cs[c.guid] = b.Commodity(c.namespace, c.mnemonic, c.fullName)
	}
	b.SetRoot(rootGUID)
	for _, a := range append(accounts[:len(accounts):len(accounts)], templateAccounts...) {
		b.AddAccount(gnucash.AccountRecord{
			GUID:        a.guid,
			Name:        a.name,
			Type:        gnucash.AccountType(a.accountType),
			Parent:      a.parent,
			Code:        a.code,
			Description: a.description,
			Commodity:   cs[a.commodity],
		})
	}
	for _, trx := range append(transactions[:len(transactions):len(transactions)], templateTransactions...) {
		d, err := date.ParseTimestamp(trx.date)
		if err != nil {
			t.Fatal(err)
		}
		b.AddTransaction(gnucash.TransactionRecord{
			GUID:        trx.guid,
			Date:        d,
			Description: trx.description,
			Currency:    cs[trx.currency],
		})
		for _, s := range trx.splits {
			b.AddSplit(gnucash.SplitRecord{
				GUID:        s.guid,
				Transaction: trx.guid,
				Account:     s.account,
				Memo:        s.memo,
				Quantity:    gnucash.Rational{Num: s.quantity[0], Denom: s.quantity[1]},
				Value:       gnucash.Rational{Num: s.value[0], Denom: s.value[1]},
			})
		}
	}
	for _, p := range prices {
		d, err := date.ParseTimestamp(p.date)
		if err != nil {
			t.Fatal(err)
		}
		b.AddPrice(gnucash.PriceRecord{
			Commodity: cs[p.commodity],
			Currency:  cs[p.currency],
			Time:      d,
			Value:     gnucash.Rational{Num: p.value[0], Denom: p.value[1]},
		})
	}
	book, err := b.Build()
	if err != nil {
		t.Fatalf("error building book: %v", err)
	}
	return book
}

// CreateSQLite writes the example book to a new SQLite database at path.
func CreateSQLite(t testing.TB, path string) {
	t.Helper()
	if err := createSQLite(context.Background(), path); err != nil {
		t.Fatalf("error creating SQLite book: %v", err)
	}
}

func createSQLite(ctx context.Context, path string) (err error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO books VALUES (?, ?, ?)", "book", rootGUID, templateRootGUID); err != nil {
		return err
	}
	for _, c := range commodities {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO commodities (guid, namespace, mnemonic, fullname, fraction, quote_flag) 
			VALUES (?, ?, ?, ?, 100, 0)`,
			c.guid, c.namespace, c.mnemonic, c.fullName); err != nil {
			return err
		}
	}
	for _, a := range append(accounts[:len(accounts):len(accounts)], templateAccounts...) {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO accounts (guid, name, account_type, commodity_guid, commodity_scu, non_std_scu, parent_guid, code, description) 
			VALUES (?, ?, ?, ?, 100, 0, ?, ?, ?)`,
			a.guid, a.name, a.accountType, null(a.commodity), null(a.parent), a.code, a.description); err != nil {
			return err
		}
	}
	for _, trx := range append(transactions[:len(transactions):len(transactions)], templateTransactions...) {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO transactions (guid, currency_guid, num, post_date, enter_date, description) 
			VALUES (?, ?, '', ?, ?, ?)`,
			trx.guid, trx.currency, trx.date, trx.date, trx.description); err != nil {
			return err
		}
		for _, s := range trx.splits {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO splits (guid, tx_guid, account_guid, memo, action, reconcile_state, value_num, value_denom, quantity_num, quantity_denom) 
				VALUES (?, ?, ?, ?, '', 'n', ?, ?, ?, ?)`,
				s.guid, trx.guid, s.account, s.memo, s.value[0], s.value[1], s.quantity[0], s.quantity[1]); err != nil {
				return err
			}
		}
	}
	for _, p := range prices {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO prices (guid, commodity_guid, currency_guid, date, source, type, value_num, value_denom) 
			VALUES (?, ?, ?, ?, 'user:price', 'last', ?, ?)`,
			p.guid, p.commodity, p.currency, p.date, p.value[0], p.value[1]); err != nil {
			return err
		}
	}
	return nil
}

func null(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// CreateXML writes the example book to a new XML file at path, gzipped if
// compress is set.
func CreateXML(t testing.TB, path string, compress bool) {
	t.Helper()
	var buf bytes.Buffer
	if compress {
		zw := gzip.NewWriter(&buf)
		WriteXML(zw)
		if err := zw.Close(); err != nil {
			t.Fatalf("error compressing XML book: %v", err)
		}
	} else {
		WriteXML(&buf)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("error writing XML book: %v", err)
	}
}

// WriteXML writes the example book in the GnuCash XML format.
func WriteXML(w io.Writer) {
	x := xmlWriter{w: w}
	x.line(`<?xml version="1.0" encoding="utf-8" ?>`)
	x.line(`<gnc-v2`)
	for _, ns := range []string{"gnc", "act", "book", "cd", "cmdty", "price", "slot", "split", "trn", "ts"} {
		x.line(`     xmlns:%s="http://www.gnucash.org/XML/%s"`, ns, ns)
	}
	x.line(`>`)
	x.line(`<gnc:count-data cd:type="book">1</gnc:count-data>`)
	x.line(`<gnc:book version="2.0.0">`)
	x.line(`<book:id type="guid">book</book:id>`)
	for _, c := range commodities {
		x.line(`<gnc:commodity version="2.0.0">`)
		x.line(`  <cmdty:space>%s</cmdty:space>`, escape(legacyNamespace(c.namespace)))
		x.line(`  <cmdty:id>%s</cmdty:id>`, escape(c.mnemonic))
		x.line(`  <cmdty:name>%s</cmdty:name>`, escape(c.fullName))
		x.line(`</gnc:commodity>`)
	}
	x.line(`<gnc:pricedb version="1">`)
	for _, p := range prices {
		x.line(`  <price>`)
		x.line(`    <price:id type="guid">%s</price:id>`, p.guid)
		x.commodityRef("price:commodity", p.commodity)
		x.commodityRef("price:currency", p.currency)
		x.line(`    <price:time><ts:date>%s +0000</ts:date></price:time>`, p.date)
		x.line(`    <price:source>user:price</price:source>`)
		x.line(`    <price:value>%d/%d</price:value>`, p.value[0], p.value[1])
		x.line(`  </price>`)
	}
	x.line(`</gnc:pricedb>`)
	for _, a := range accounts {
		x.account(a)
	}
	for _, trx := range transactions {
		x.transaction(trx)
	}
	x.line(`<gnc:template-transactions>`)
	for _, a := range templateAccounts {
		x.account(a)
	}
	for _, trx := range templateTransactions {
		x.transaction(trx)
	}
	x.line(`</gnc:template-transactions>`)
	x.line(`</gnc:book>`)
	x.line(`</gnc-v2>`)
}

type xmlWriter struct {
	w io.Writer
}

func (x xmlWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(x.w, format, args...)
	io.WriteString(x.w, "\n")
}

func (x xmlWriter) commodityRef(tag, guid string) {
	for _, c := range commodities {
		if c.guid == guid {
			x.line(`    <%s><cmdty:space>%s</cmdty:space><cmdty:id>%s</cmdty:id></%s>`, tag, escape(legacyNamespace(c.namespace)), escape(c.mnemonic), tag)
		}
	}
}

func (x xmlWriter) account(a account) {
	x.line(`<gnc:account version="2.0.0">`)
	x.line(`  <act:name>%s</act:name>`, escape(a.name))
	x.line(`  <act:id type="guid">%s</act:id>`, a.guid)
	x.line(`  <act:type>%s</act:type>`, a.accountType)
	if a.commodity != "" {
		x.commodityRef("act:commodity", a.commodity)
		x.line(`  <act:commodity-scu>100</act:commodity-scu>`)
	}
	if a.code != "" {
		x.line(`  <act:code>%s</act:code>`, escape(a.code))
	}
	if a.description != "" {
		x.line(`  <act:description>%s</act:description>`, escape(a.description))
	}
	x.line(`  <act:slots><slot><slot:key>color</slot:key><slot:value type="string">Not Set</slot:value></slot></act:slots>`)
	if a.parent != "" {
		x.line(`  <act:parent type="guid">%s</act:parent>`, a.parent)
	}
	x.line(`</gnc:account>`)
}

func (x xmlWriter) transaction(trx transaction) {
	x.line(`<gnc:transaction version="2.0.0">`)
	x.line(`  <trn:id type="guid">%s</trn:id>`, trx.guid)
	x.commodityRef("trn:currency", trx.currency)
	x.line(`  <trn:date-posted><ts:date>%s +0000</ts:date></trn:date-posted>`, trx.date)
	x.line(`  <trn:date-entered><ts:date>%s +0000</ts:date></trn:date-entered>`, trx.date)
	x.line(`  <trn:description>%s</trn:description>`, escape(trx.description))
	x.line(`  <trn:splits>`)
	for _, s := range trx.splits {
		x.line(`    <trn:split>`)
		x.line(`      <split:id type="guid">%s</split:id>`, s.guid)
		if s.memo != "" {
			x.line(`      <split:memo>%s</split:memo>`, escape(s.memo))
		}
		x.line(`      <split:reconciled-state>n</split:reconciled-state>`)
		x.line(`      <split:value>%d/%d</split:value>`, s.value[0], s.value[1])
		x.line(`      <split:quantity>%d/%d</split:quantity>`, s.quantity[0], s.quantity[1])
		x.line(`      <split:account type="guid">%s</split:account>`, s.account)
		x.line(`    </trn:split>`)
	}
	x.line(`  </trn:splits>`)
	x.line(`</gnc:transaction>`)
}

// legacyNamespace writes currencies the way old GnuCash versions did, to
// exercise the namespace mapping of the XML reader.
func legacyNamespace(ns string) string {
	if ns == "CURRENCY" {
		return "ISO4217"
	}
	return ns
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
