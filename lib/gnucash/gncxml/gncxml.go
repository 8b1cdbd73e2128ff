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

// Package gncxml reads GnuCash books stored in the (optionally gzipped) XML
// file format.
package gncxml

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

type document struct {
	Books []book `xml:"book"`
}

type book struct {
	Commodities  []commodity   `xml:"commodity"`
	Prices       []price       `xml:"pricedb>price"`
	Accounts     []account     `xml:"account"`
	Transactions []transaction `xml:"transaction"`
}

type commodityRef struct {
	Space string `xml:"space"`
	ID    string `xml:"id"`
}

type commodity struct {
	Space string `xml:"space"`
	ID    string `xml:"id"`
	Name  string `xml:"name"`
}

type timestamp struct {
	Date string `xml:"date"`
}

type price struct {
	Commodity commodityRef `xml:"commodity"`
	Currency  commodityRef `xml:"currency"`
	Time      timestamp    `xml:"time"`
	Value     string       `xml:"value"`
}

type account struct {
	Name        string        `xml:"name"`
	ID          string        `xml:"id"`
	Type        string        `xml:"type"`
	Commodity   *commodityRef `xml:"commodity"`
	Code        string        `xml:"code"`
	Description string        `xml:"description"`
	Parent      string        `xml:"parent"`
}

type transaction struct {
	ID          string       `xml:"id"`
	Currency    commodityRef `xml:"currency"`
	Posted      timestamp    `xml:"date-posted"`
	Description string       `xml:"description"`
	Splits      []split      `xml:"splits>split"`
}

type split struct {
	ID       string `xml:"id"`
	Memo     string `xml:"memo"`
	Value    string `xml:"value"`
	Quantity string `xml:"quantity"`
	Account  string `xml:"account"`
}

// Load reads the book stored at path.
func Load(path, separator string) (book *gnucash.Book, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return Read(f, separator)
}

// Read reads a book. Gzipped input is detected by its magic number.
func Read(r io.Reader, separator string) (*gnucash.Book, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}
	if len(doc.Books) != 1 {
		return nil, fmt.Errorf("expected exactly one book, found %d", len(doc.Books))
	}
	return build(&doc.Books[0], separator)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func build(bk *book, separator string) (*gnucash.Book, error) {
	b := gnucash.NewBuilder(separator)
	ref := func(c commodityRef) *gnucash.Commodity {
		return b.Commodity(c.Space, c.ID, "")
	}
	for _, c := range bk.Commodities {
		b.Commodity(c.Space, c.ID, c.Name)
	}
	for _, a := range bk.Accounts {
		rec := gnucash.AccountRecord{
			GUID:        a.ID,
			Name:        a.Name,
			Type:        gnucash.AccountType(a.Type),
			Parent:      a.Parent,
			Code:        a.Code,
			Description: a.Description,
		}
		if a.Commodity != nil {
			rec.Commodity = ref(*a.Commodity)
		}
		b.AddAccount(rec)
	}
	for _, t := range bk.Transactions {
		posted, err := date.ParseTimestamp(t.Posted.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		b.AddTransaction(gnucash.TransactionRecord{
			GUID:        t.ID,
			Date:        posted,
			Description: t.Description,
			Currency:    ref(t.Currency),
		})
		for _, s := range t.Splits {
			quantity, err := gnucash.ParseRational(s.Quantity)
			if err != nil {
				return nil, fmt.Errorf("split %s: %w", s.ID, err)
			}
			value, err := gnucash.ParseRational(s.Value)
			if err != nil {
				return nil, fmt.Errorf("split %s: %w", s.ID, err)
			}
			b.AddSplit(gnucash.SplitRecord{
				GUID:        s.ID,
				Transaction: t.ID,
				Account:     s.Account,
				Memo:        s.Memo,
				Quantity:    quantity,
				Value:       value,
			})
		}
	}
	for _, p := range bk.Prices {
		t, err := date.ParseTimestamp(p.Time.Date)
		if err != nil {
			return nil, err
		}
		value, err := gnucash.ParseRational(p.Value)
		if err != nil {
			return nil, err
		}
		b.AddPrice(gnucash.PriceRecord{
			Commodity: ref(p.Commodity),
			Currency:  ref(p.Currency),
			Time:      t,
			Value:     value,
		})
	}
	return b.Build()
}
