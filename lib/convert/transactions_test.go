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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
	"github.com/sboehler/gnucash2beancount/lib/gnucash/gnucashtest"
)

func TestClassifyLeg(t *testing.T) {
	tests := []struct {
		sameCurrency bool
		sign         int
		isCurrency   bool
		want         legKind
	}{
		{true, 1, true, plainLeg},
		{true, -1, false, plainLeg},
		{true, 0, false, plainLeg},
		{false, 0, false, zeroLeg},
		{false, 0, true, zeroLeg},
		{false, 1, false, acquisitionLeg},
		{false, -1, false, disposalLeg},
		{false, 1, true, conversionLeg},
		{false, -1, true, conversionLeg},
	}
	for _, test := range tests {
		got := classifyLeg(test.sameCurrency, test.sign, test.isCurrency)

		if got != test.want {
			t.Errorf("classifyLeg(%t, %d, %t) = %s, want %s", test.sameCurrency, test.sign, test.isCurrency, got, test.want)
		}
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(s, currency string) *beancount.Amount {
	return &beancount.Amount{Number: dec(s), Currency: currency}
}

// convertFixture converts the accounts of the example book and returns a
// function converting its transactions by GUID.
func convertFixture(t *testing.T) (*Converter, map[string]*beancount.Open, func(guid string) *beancount.Transaction) {
	t.Helper()
	book := gnucashtest.Book(t)
	c := New(book, DefaultConfig(), testToday)
	accounts := make(map[string]*beancount.Open)
	for _, a := range book.AccountsInUse() {
		open, err := c.ConvertAccount(a)
		if err != nil {
			t.Fatalf("ConvertAccount(%s) returned unexpected error: %v", a.FullName, err)
		}
		accounts[a.GUID] = open
	}
	return c, accounts, func(guid string) *beancount.Transaction {
		t.Helper()
		for i := range book.Transactions {
			if trx := book.Transaction(i); trx.GUID == guid {
				res, err := c.ConvertTransaction(trx, accounts)
				if err != nil {
					t.Fatalf("ConvertTransaction(%s) returned unexpected error: %v", guid, err)
				}
				return res
			}
		}
		t.Fatalf("transaction %s not found", guid)
		return nil
	}
}

func TestConvertTransaction(t *testing.T) {
	_, _, convert := convertFixture(t)
	tests := []struct {
		guid string
		want *beancount.Transaction
	}{
		{
			guid: "t3",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 1, 10),
				Flag:      "*",
				Narration: "Groceries",
				Postings: []beancount.Posting{
					{Account: "Expenses:Food-Drinks", Units: *amt("25.5", "USD")},
					{Account: "Assets:Checking-Account", Units: *amt("-25.5", "USD")},
				},
			},
		},
		{
			guid: "t2",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 1, 5),
				Flag:      "*",
				Narration: "Buy ABC",
				Postings: []beancount.Posting{
					{
						Account: "Assets:Brokerage:ABC",
						Units:   *amt("10", "ABC"),
						Cost:    &beancount.Cost{Number: dec("150"), Currency: "USD", Date: date.Date(2021, 1, 5)},
						Price:   amt("150", "USD"),
						Total:   amt("1500", "USD"),
						Meta:    beancount.Metadata{{Key: "memo", Value: "lot 1"}},
					},
					{Account: "Assets:Checking-Account", Units: *amt("-1500", "USD")},
				},
			},
		},
		{
			guid: "t4",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 2, 1),
				Flag:      "*",
				Narration: "Sell ABC",
				Postings: []beancount.Posting{
					{
						Account: "Assets:Brokerage:ABC",
						Units:   *amt("-4", "ABC"),
						Cost:    &beancount.Cost{Number: dec("160"), Currency: "USD"},
						Price:   amt("160", "USD"),
						Total:   amt("640", "USD"),
					},
					{Account: "Assets:Checking-Account", Units: *amt("640", "USD")},
				},
			},
		},
		{
			guid: "t5",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 2, 15),
				Flag:      "*",
				Narration: "Exchange to EUR",
				Postings: []beancount.Posting{
					{
						Account: "Assets:Euro-Cash",
						Units:   *amt("100", "EUR"),
						Price:   amt("1.2", "USD"),
						Total:   amt("120", "USD"),
					},
					{Account: "Assets:Checking-Account", Units: *amt("-120", "USD")},
				},
			},
		},
		{
			guid: "t6",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 3, 1),
				Flag:      "*",
				Narration: "Realized gain",
				Postings: []beancount.Posting{
					{
						Account: "Assets:Brokerage:ABC",
						Units:   *amt("0", "ABC"),
						Total:   amt("40", "USD"),
					},
					{Account: "Income:Capital-Gains", Units: *amt("-40", "USD")},
				},
			},
		},
		{
			guid: "t7",
			want: &beancount.Transaction{
				Date:      date.Date(2021, 3, 5),
				Flag:      "*",
				Narration: "Dinner in Paris",
				Postings: []beancount.Posting{
					{Account: "Assets:Euro-Cash", Units: *amt("-30", "EUR")},
					{
						Account: "Expenses:Food-Drinks",
						Units:   *amt("40", "USD"),
						Price:   amt("0.75", "EUR"),
						Total:   amt("30", "EUR"),
						Meta:    beancount.Metadata{{Key: "memo", Value: "tip included"}},
					},
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.guid, func(t *testing.T) {
			got := convert(test.guid)

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("ConvertTransaction() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertTransactionBalances(t *testing.T) {
	c, accounts, _ := convertFixture(t)
	tolerance := DefaultConfig().Tolerance
	for i := range c.book.Transactions {
		src := c.book.Transaction(i)
		trx, err := c.ConvertTransaction(src, accounts)
		if err != nil {
			t.Fatalf("ConvertTransaction(%s) returned unexpected error: %v", src.GUID, err)
		}
		sums := make(map[string]decimal.Decimal)
		if hasZeroLeg(trx) {
			// A foreign leg without units carries no weight.
			continue
		}
		for _, p := range trx.Postings {
			w := p.Weight()
			sums[w.Currency] = sums[w.Currency].Add(w.Number)
		}
		for currency, sum := range sums {
			if sum.Abs().GreaterThan(tolerance) {
				t.Errorf("transaction %s does not balance: %s %s", src.GUID, sum, currency)
			}
		}
	}
}

func hasZeroLeg(trx *beancount.Transaction) bool {
	for _, p := range trx.Postings {
		if p.Units.Number.IsZero() && p.Total != nil {
			return true
		}
	}
	return false
}

func TestConvertTransactionCostDates(t *testing.T) {
	c, accounts, _ := convertFixture(t)
	for i := range c.book.Transactions {
		src := c.book.Transaction(i)
		trx, err := c.ConvertTransaction(src, accounts)
		if err != nil {
			t.Fatalf("ConvertTransaction(%s) returned unexpected error: %v", src.GUID, err)
		}
		for _, p := range trx.Postings {
			if p.Cost == nil {
				continue
			}
			switch {
			case p.Units.Number.IsPositive() && !p.Cost.Date.Equal(trx.Date):
				t.Errorf("%s: acquisition cost dated %v, want %v", src.GUID, p.Cost.Date, trx.Date)
			case p.Units.Number.IsNegative() && p.Cost.HasDate():
				t.Errorf("%s: disposal cost dated %v, want no date", src.GUID, p.Cost.Date)
			}
		}
	}
}

func TestConvertTransactionUnmappedAccount(t *testing.T) {
	c, accounts, _ := convertFixture(t)
	delete(accounts, "checking")

	_, err := c.ConvertTransaction(c.book.Transaction(0), accounts)

	if !errors.Is(err, ErrUnmappedAccount) {
		t.Errorf("ConvertTransaction() returned %v, want %v", err, ErrUnmappedAccount)
	}
}

func TestMainAccount(t *testing.T) {
	b := gnucash.NewBuilder(":")
	usd := b.Commodity("CURRENCY", "USD", "")
	chf := b.Commodity("CURRENCY", "CHF", "")
	xyz := b.Commodity("SIX", "XYZ", "")
	b.AddAccount(gnucash.AccountRecord{GUID: "root", Name: "Root", Type: gnucash.ROOT})
	b.AddAccount(gnucash.AccountRecord{GUID: "chf", Name: "Cash", Type: gnucash.CASH, Parent: "root", Commodity: chf})
	b.AddAccount(gnucash.AccountRecord{GUID: "xyz", Name: "XYZ", Type: gnucash.STOCK, Parent: "root", Commodity: xyz})
	b.AddAccount(gnucash.AccountRecord{GUID: "usd", Name: "Bank", Type: gnucash.BANK, Parent: "root", Commodity: usd})
	b.AddTransaction(gnucash.TransactionRecord{GUID: "match", Date: date.Date(2022, 1, 1), Currency: usd})
	b.AddSplit(gnucash.SplitRecord{GUID: "m1", Transaction: "match", Account: "xyz", Quantity: gnucash.Rational{Num: 1, Denom: 1}, Value: gnucash.Rational{Num: 10, Denom: 1}})
	b.AddSplit(gnucash.SplitRecord{GUID: "m2", Transaction: "match", Account: "usd", Quantity: gnucash.Rational{Num: -10, Denom: 1}, Value: gnucash.Rational{Num: -10, Denom: 1}})
	b.AddTransaction(gnucash.TransactionRecord{GUID: "fallback", Date: date.Date(2022, 1, 2), Currency: usd})
	b.AddSplit(gnucash.SplitRecord{GUID: "f1", Transaction: "fallback", Account: "chf", Quantity: gnucash.Rational{Num: 9, Denom: 1}, Value: gnucash.Rational{Num: 10, Denom: 1}})
	b.AddSplit(gnucash.SplitRecord{GUID: "f2", Transaction: "fallback", Account: "xyz", Quantity: gnucash.Rational{Num: -1, Denom: 1}, Value: gnucash.Rational{Num: -10, Denom: 1}})
	book, err := b.Build()
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	c := New(book, DefaultConfig(), testToday)

	for _, test := range []struct{ trx, want string }{{"match", "usd"}, {"fallback", "chf"}} {
		for i := range book.Transactions {
			trx := book.Transaction(i)
			if trx.GUID != test.trx {
				continue
			}
			got, err := c.mainAccount(trx)
			if err != nil {
				t.Fatalf("mainAccount(%s) returned unexpected error: %v", test.trx, err)
			}
			if got.GUID != test.want {
				t.Errorf("mainAccount(%s) = %s, want %s", test.trx, got.GUID, test.want)
			}
		}
	}
}
