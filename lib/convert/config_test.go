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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

func TestReadConfig(t *testing.T) {
	input := strings.Join([]string{
		"currency: CHF",
		"tolerance: '0.01'",
		"separator: .",
		"price_source: CHF:six/%s",
		"categories:",
		"  trading: Equity",
		"  root: Assets",
	}, "\n")

	got, err := ReadConfig(strings.NewReader(input))

	if err != nil {
		t.Fatalf("ReadConfig() returned unexpected error: %v", err)
	}
	if got.Currency != "CHF" {
		t.Errorf("Currency = %q, want %q", got.Currency, "CHF")
	}
	if got.Tolerance.String() != "0.01" {
		t.Errorf("Tolerance = %s, want 0.01", got.Tolerance)
	}
	if got.Separator != "." || got.PriceSource != "CHF:six/%s" {
		t.Errorf("Separator, PriceSource = %q, %q, want %q, %q", got.Separator, got.PriceSource, ".", "CHF:six/%s")
	}
	if got.BookingMethod != "FIFO" || got.CurrencyNamespace != "CURRENCY" {
		t.Errorf("BookingMethod, CurrencyNamespace = %q, %q, want defaults", got.BookingMethod, got.CurrencyNamespace)
	}
	for accType, want := range map[gnucash.AccountType]beancount.AccountType{
		gnucash.TRADING: beancount.EQUITY,
		gnucash.ROOT:    beancount.ASSETS,
		gnucash.BANK:    beancount.ASSETS,
		gnucash.EXPENSE: beancount.EXPENSES,
	} {
		if got.Categories[accType] != want {
			t.Errorf("Categories[%s] = %s, want %s", accType, got.Categories[accType], want)
		}
	}
}

func TestReadConfigEmpty(t *testing.T) {
	got, err := ReadConfig(strings.NewReader(""))

	if err != nil {
		t.Fatalf("ReadConfig() returned unexpected error: %v", err)
	}
	if want := DefaultConfig(); got.Currency != want.Currency || !got.Tolerance.Equal(want.Tolerance) || len(got.Categories) != len(want.Categories) {
		t.Errorf("ReadConfig() = %+v, want defaults", got)
	}
}

func TestReadConfigCurrencyKeepsPriceSource(t *testing.T) {
	got, err := ReadConfig(strings.NewReader("currency: EUR\n"))

	if err != nil {
		t.Fatalf("ReadConfig() returned unexpected error: %v", err)
	}
	if got.Currency != "EUR" || got.PriceSource != "USD:yahoo/%s" {
		t.Errorf("Currency, PriceSource = %q, %q, want %q, %q", got.Currency, got.PriceSource, "EUR", "USD:yahoo/%s")
	}
}

func TestReadConfigInvalid(t *testing.T) {
	tests := []struct {
		desc, input string
	}{
		{"unknown key", "currencies: [USD]"},
		{"invalid tolerance", "tolerance: abc"},
		{"negative tolerance", "tolerance: '-0.1'"},
		{"invalid category", "categories:\n  bank: Savings"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if _, err := ReadConfig(strings.NewReader(test.input)); err == nil {
				t.Errorf("ReadConfig(%q) returned no error", test.input)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("booking_method: STRICT\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)

	if err != nil {
		t.Fatalf("LoadConfig() returned unexpected error: %v", err)
	}
	if got.BookingMethod != "STRICT" {
		t.Errorf("BookingMethod = %q, want %q", got.BookingMethod, "STRICT")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("LoadConfig() of a missing file returned no error")
	}
}
