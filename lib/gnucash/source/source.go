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

// Package source opens GnuCash books in any supported file format.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/sboehler/gnucash2beancount/lib/gnucash"
	"github.com/sboehler/gnucash2beancount/lib/gnucash/gncxml"
	"github.com/sboehler/gnucash2beancount/lib/gnucash/sqlite"
)

// Format is a GnuCash file format.
type Format int

const (
	// XML is the (optionally gzipped) XML format.
	XML Format = iota
	// SQLite is the SQLite3 database format.
	SQLite
)

func (f Format) String() string {
	switch f {
	case XML:
		return "xml"
	case SQLite:
		return "sqlite"
	}
	return ""
}

var sqliteMagic = []byte("SQLite format 3\x00")

// Detect determines the format of the file at path.
func Detect(path string) (format Format, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	header := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, err
	}
	if bytes.Equal(header[:n], sqliteMagic) {
		return SQLite, nil
	}
	return XML, nil
}

// Open loads the book at path. Full account names are joined with the given
// separator.
func Open(ctx context.Context, path, separator string) (*gnucash.Book, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	var book *gnucash.Book
	switch format {
	case SQLite:
		book, err = sqlite.Load(ctx, path, separator)
	default:
		book, err = gncxml.Load(path, separator)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s book %s: %w", format, path, err)
	}
	return book, nil
}
