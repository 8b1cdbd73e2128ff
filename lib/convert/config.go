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
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// Config controls the conversion.
type Config struct {
	// Currency is the operating currency of the ledger.
	Currency string

	// Tolerance is the default tolerance for balancing transactions.
	Tolerance decimal.Decimal

	// BookingMethod is the lot booking method.
	BookingMethod string

	// CurrencyNamespace is the commodity namespace of currencies.
	CurrencyNamespace string

	// Separator separates the segments of GnuCash account names.
	Separator string

	// PriceSource is a format string for the price source of a commodity,
	// with the commodity symbol as its only argument. It names its quote
	// currency itself and does not follow Currency.
	PriceSource string

	// Categories maps GnuCash account types to top-level categories.
	Categories map[gnucash.AccountType]beancount.AccountType
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Currency:          "USD",
		Tolerance:         decimal.RequireFromString("0.005"),
		BookingMethod:     "FIFO",
		CurrencyNamespace: gnucash.CurrencyNamespace,
		Separator:         ":",
		PriceSource:       "USD:yahoo/%s",
		Categories: map[gnucash.AccountType]beancount.AccountType{
			gnucash.ASSET:      beancount.ASSETS,
			gnucash.BANK:       beancount.ASSETS,
			gnucash.CASH:       beancount.ASSETS,
			gnucash.CHECKING:   beancount.ASSETS,
			gnucash.SAVINGS:    beancount.ASSETS,
			gnucash.MONEYMRKT:  beancount.ASSETS,
			gnucash.RECEIVABLE: beancount.ASSETS,
			gnucash.MUTUAL:     beancount.ASSETS,
			gnucash.STOCK:      beancount.ASSETS,
			gnucash.CURRENCY:   beancount.ASSETS,
			gnucash.TRADING:    beancount.ASSETS,
			gnucash.CREDIT:     beancount.LIABILITIES,
			gnucash.CREDITLINE: beancount.LIABILITIES,
			gnucash.LIABILITY:  beancount.LIABILITIES,
			gnucash.PAYABLE:    beancount.LIABILITIES,
			gnucash.EQUITY:     beancount.EQUITY,
			gnucash.EXPENSE:    beancount.EXPENSES,
			gnucash.INCOME:     beancount.INCOME,
		},
	}
}

type configFile struct {
	Currency          string            `yaml:"currency"`
	Tolerance         string            `yaml:"tolerance"`
	BookingMethod     string            `yaml:"booking_method"`
	CurrencyNamespace string            `yaml:"currency_namespace"`
	Separator         string            `yaml:"separator"`
	PriceSource       string            `yaml:"price_source"`
	Categories        map[string]string `yaml:"categories"`
}

// LoadConfig reads a YAML configuration file. Settings absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig reads a YAML configuration. Unknown keys are an error.
func ReadConfig(r io.Reader) (Config, error) {
	var cf configFile
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&cf); err != nil && err != io.EOF {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if cf.Currency != "" {
		cfg.Currency = cf.Currency
	}
	if cf.Tolerance != "" {
		t, err := decimal.NewFromString(cf.Tolerance)
		if err != nil {
			return Config{}, fmt.Errorf("invalid tolerance %q: %w", cf.Tolerance, err)
		}
		if !t.IsPositive() {
			return Config{}, fmt.Errorf("invalid tolerance %q: must be positive", cf.Tolerance)
		}
		cfg.Tolerance = t
	}
	if cf.BookingMethod != "" {
		cfg.BookingMethod = cf.BookingMethod
	}
	if cf.CurrencyNamespace != "" {
		cfg.CurrencyNamespace = cf.CurrencyNamespace
	}
	if cf.Separator != "" {
		cfg.Separator = cf.Separator
	}
	if cf.PriceSource != "" {
		cfg.PriceSource = cf.PriceSource
	}
	for k, v := range cf.Categories {
		at, err := beancount.ParseAccountType(v)
		if err != nil {
			return Config{}, fmt.Errorf("category of %s: %w", k, err)
		}
		cfg.Categories[gnucash.AccountType(strings.ToUpper(k))] = at
	}
	return cfg, nil
}
