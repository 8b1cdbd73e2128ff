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

package cmd

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/sboehler/gnucash2beancount/cmd/cmdtest"
	"github.com/sboehler/gnucash2beancount/lib/gnucash/gnucashtest"
)

func TestGolden(t *testing.T) {
	tests := []struct {
		input  string
		create func(t *testing.T, path string)
	}{
		{"book.sqlite", func(t *testing.T, p string) { gnucashtest.CreateSQLite(t, p) }},
		{"book.xml", func(t *testing.T, p string) { gnucashtest.CreateXML(t, p, false) }},
		{"book.gnucash", func(t *testing.T, p string) { gnucashtest.CreateXML(t, p, true) }},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			var (
				dir    = t.TempDir()
				input  = filepath.Join(dir, test.input)
				output = filepath.Join(dir, "book.beancount")
			)
			test.create(t, input)
			args := []string{"--today", "2021-06-30", "--color=false", input, output}

			status := cmdtest.Run(t, CreateCmd(), args)

			got, err := os.ReadFile(output)
			if err != nil {
				t.Fatalf("error reading output: %v", err)
			}
			g := goldie.New(t)
			g.Assert(t, "book", got)
			g.Assert(t, "status", status)
		})
	}
}

func TestSummary(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "book.sqlite")
		output = filepath.Join(dir, "book.beancount")
	)
	gnucashtest.CreateSQLite(t, input)

	got := cmdtest.Run(t, CreateCmd(), []string{"--summary", "--color=false", input, output})

	goldie.New(t).Assert(t, "summary", got)
}

func TestCurrency(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "book.sqlite")
		output = filepath.Join(dir, "book.beancount")
	)
	gnucashtest.CreateSQLite(t, input)

	cmdtest.Run(t, CreateCmd(), []string{"--currency", "EUR", "--color=false", input, output})

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("error reading output: %v", err)
	}
	for _, want := range []string{
		`option "operating_currency" "EUR"`,
		"** USD\n\n2021-02-15 price USD 0.8333 EUR\n",
		`price: "USD:yahoo/ABC"`,
	} {
		if !strings.Contains(string(got), want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if strings.Contains(string(got), "price ABC") {
		t.Errorf("output contains ABC prices, which are only recorded in USD")
	}
}

func TestConfig(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "book.sqlite")
		config = filepath.Join(dir, "config.yaml")
		output = filepath.Join(dir, "book.beancount")
	)
	gnucashtest.CreateSQLite(t, input)
	if err := os.WriteFile(config, []byte("booking_method: LIFO\nprice_source: USD:google/%s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cmdtest.Run(t, CreateCmd(), []string{"--config", config, "--color=false", input, output})

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("error reading output: %v", err)
	}
	for _, want := range []string{`option "booking_method" "LIFO"`, `price: "USD:google/ABC"`} {
		if !strings.Contains(string(got), want) {
			t.Errorf("output does not contain %q", want)
		}
	}
}

func TestExecuteFails(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.sqlite")
	gnucashtest.CreateSQLite(t, book)
	badConfig := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("unknown: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		desc   string
		runner runner
		input  string
	}{
		{"missing input", runner{}, filepath.Join(dir, "missing.gnucash")},
		{"invalid config", runner{config: badConfig}, book},
		{"missing config", runner{config: filepath.Join(dir, "missing.yaml")}, book},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.beancount")
			cmd := CreateCmd()
			cmd.SetErr(io.Discard)

			err := test.runner.execute(cmd, []string{test.input, output})

			if err == nil {
				t.Fatalf("execute() returned no error")
			}
			if _, err := os.Stat(output); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("execute() created output file %s", output)
			}
		})
	}
}
