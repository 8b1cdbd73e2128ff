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

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// PriceBlock holds the prices of a commodity.
type PriceBlock struct {
	Symbol string
	Prices []*beancount.Price
}

// ExportPrices exports the price history of the used commodities in the
// operating currency, ordered by symbol. Commodities without prices are
// omitted.
func (c *Converter) ExportPrices(used map[string]*gnucash.Commodity) ([]PriceBlock, error) {
	currency, ok := used[c.config.Currency]
	if !ok {
		return nil, nil
	}
	symbols := maps.Keys(used)
	slices.Sort(symbols)
	var res []PriceBlock
	for _, symbol := range symbols {
		if symbol == c.config.Currency {
			continue
		}
		samples := c.book.Prices(used[symbol], currency)
		if len(samples) == 0 {
			continue
		}
		block := PriceBlock{Symbol: symbol}
		for _, p := range samples {
			n, err := normalizeRational(p.Value)
			if err != nil {
				return nil, fmt.Errorf("price of %s: %w", symbol, err)
			}
			block.Prices = append(block.Prices, &beancount.Price{
				Date:      date.Day(p.Time),
				Commodity: symbol,
				Amount:    beancount.Amount{Number: n, Currency: c.config.Currency},
			})
		}
		res = append(res, block)
	}
	return res, nil
}
