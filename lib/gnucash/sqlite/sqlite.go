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

// Package sqlite reads GnuCash books stored in SQLite3 databases.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"

	// use SQLite3
	_ "github.com/mattn/go-sqlite3"
)

// Load opens the database at path read-only and reads the book.
func Load(ctx context.Context, path, separator string) (book *gnucash.Book, err error) {
	db, err := sql.Open("sqlite3", dataSourceName(path))
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	return Read(ctx, db, separator)
}

// uriEscaper escapes the characters that delimit or encode parts of an
// SQLite URI filename.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

func dataSourceName(path string) string {
	return fmt.Sprintf("file:%s?mode=ro", uriEscaper.Replace(path))
}

type db interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type scan interface {
	Scan(dest ...interface{}) error
}

// Read reads the book from an open database. The commodity table is read
// first, the remaining tables concurrently.
func Read(ctx context.Context, db db, separator string) (*gnucash.Book, error) {
	b := gnucash.NewBuilder(separator)
	commodities, err := readCommodities(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("reading commodities: %w", err)
	}
	var (
		root         string
		accounts     []gnucash.AccountRecord
		transactions []gnucash.TransactionRecord
		splits       []gnucash.SplitRecord
		prices       []gnucash.PriceRecord
	)
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		if err := db.QueryRowContext(ctx, "SELECT root_account_guid FROM books LIMIT 1").Scan(&root); err != nil {
			return fmt.Errorf("reading book: %w", err)
		}
		return nil
	})
	wg.Go(func() (err error) {
		accounts, err = readAccounts(ctx, db, commodities)
		if err != nil {
			return fmt.Errorf("reading accounts: %w", err)
		}
		return nil
	})
	wg.Go(func() (err error) {
		transactions, err = readTransactions(ctx, db, commodities)
		if err != nil {
			return fmt.Errorf("reading transactions: %w", err)
		}
		return nil
	})
	wg.Go(func() (err error) {
		splits, err = readSplits(ctx, db)
		if err != nil {
			return fmt.Errorf("reading splits: %w", err)
		}
		return nil
	})
	wg.Go(func() (err error) {
		prices, err = readPrices(ctx, db, commodities)
		if err != nil {
			return fmt.Errorf("reading prices: %w", err)
		}
		return nil
	})
	if err := wg.Wait(); err != nil {
		return nil, err
	}
	b.SetRoot(root)
	for _, a := range accounts {
		b.AddAccount(a)
	}
	for _, t := range transactions {
		b.AddTransaction(t)
	}
	for _, s := range splits {
		b.AddSplit(s)
	}
	for _, p := range prices {
		b.AddPrice(p)
	}
	return b.Build()
}

func readCommodities(ctx context.Context, db db, b *gnucash.Builder) (map[string]*gnucash.Commodity, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT guid, namespace, mnemonic, COALESCE(fullname, '') 
		FROM commodities`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make(map[string]*gnucash.Commodity)
	for rows.Next() {
		var guid, namespace, mnemonic, fullName string
		if err := rows.Scan(&guid, &namespace, &mnemonic, &fullName); err != nil {
			return nil, err
		}
		res[guid] = b.Commodity(namespace, mnemonic, fullName)
	}
	return res, rows.Err()
}

func readAccounts(ctx context.Context, db db, commodities map[string]*gnucash.Commodity) ([]gnucash.AccountRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT guid, name, account_type, COALESCE(commodity_guid, ''), COALESCE(parent_guid, ''), 
			COALESCE(code, ''), COALESCE(description, '') 
		FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []gnucash.AccountRecord
	for rows.Next() {
		var (
			a             gnucash.AccountRecord
			accountType   string
			commodityGUID string
		)
		if err := rows.Scan(&a.GUID, &a.Name, &accountType, &commodityGUID, &a.Parent, &a.Code, &a.Description); err != nil {
			return nil, err
		}
		a.Type = gnucash.AccountType(accountType)
		if commodityGUID != "" {
			if a.Commodity, err = lookup(commodities, commodityGUID); err != nil {
				return nil, err
			}
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func readTransactions(ctx context.Context, db db, commodities map[string]*gnucash.Commodity) ([]gnucash.TransactionRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT guid, currency_guid, post_date, COALESCE(description, '') 
		FROM transactions 
		ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []gnucash.TransactionRecord
	for rows.Next() {
		t, err := rowToTransaction(rows, commodities)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func rowToTransaction(row scan, commodities map[string]*gnucash.Commodity) (gnucash.TransactionRecord, error) {
	var (
		res                    gnucash.TransactionRecord
		currencyGUID, postDate string
		err                    error
	)
	if err = row.Scan(&res.GUID, &currencyGUID, &postDate, &res.Description); err != nil {
		return res, err
	}
	if res.Currency, err = lookup(commodities, currencyGUID); err != nil {
		return res, err
	}
	if res.Date, err = date.ParseTimestamp(postDate); err != nil {
		return res, fmt.Errorf("transaction %s: %w", res.GUID, err)
	}
	return res, nil
}

func readSplits(ctx context.Context, db db) ([]gnucash.SplitRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT guid, tx_guid, account_guid, COALESCE(memo, ''), 
			quantity_num, quantity_denom, value_num, value_denom 
		FROM splits 
		ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []gnucash.SplitRecord
	for rows.Next() {
		var s gnucash.SplitRecord
		if err := rows.Scan(&s.GUID, &s.Transaction, &s.Account, &s.Memo,
			&s.Quantity.Num, &s.Quantity.Denom, &s.Value.Num, &s.Value.Denom); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func readPrices(ctx context.Context, db db, commodities map[string]*gnucash.Commodity) ([]gnucash.PriceRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT commodity_guid, currency_guid, date, value_num, value_denom 
		FROM prices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []gnucash.PriceRecord
	for rows.Next() {
		p, err := rowToPrice(rows, commodities)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func rowToPrice(row scan, commodities map[string]*gnucash.Commodity) (gnucash.PriceRecord, error) {
	var (
		res                            gnucash.PriceRecord
		commodityGUID, currencyGUID, s string
		err                            error
	)
	if err = row.Scan(&commodityGUID, &currencyGUID, &s, &res.Value.Num, &res.Value.Denom); err != nil {
		return res, err
	}
	if res.Commodity, err = lookup(commodities, commodityGUID); err != nil {
		return res, err
	}
	if res.Currency, err = lookup(commodities, currencyGUID); err != nil {
		return res, err
	}
	if res.Time, err = date.ParseTimestamp(s); err != nil {
		return res, err
	}
	return res, nil
}

func lookup(commodities map[string]*gnucash.Commodity, guid string) (*gnucash.Commodity, error) {
	c, ok := commodities[guid]
	if !ok {
		return nil, fmt.Errorf("unknown commodity %s", guid)
	}
	return c, nil
}
