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
	"time"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/set"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

type commodityKey struct {
	namespace, mnemonic string
}

// CollectCommodities declares the commodities held by the given accounts,
// in the order of the book's commodity table. It also returns the used
// commodities by their beancount symbol. Commodities sharing a symbol are
// each declared, and the symbol refers to the first of them.
func (c *Converter) CollectCommodities(accounts []*gnucash.Account, d time.Time) ([]*beancount.Commodity, map[string]*gnucash.Commodity, error) {
	used := set.New[commodityKey]()
	for _, a := range accounts {
		if a.Commodity == nil {
			continue
		}
		used.Add(commodityKey{a.Commodity.Namespace, a.Commodity.Mnemonic})
	}
	var (
		res      []*beancount.Commodity
		bySymbol = make(map[string]*gnucash.Commodity)
	)
	for _, ns := range c.book.Namespaces() {
		for _, cm := range c.book.Commodities(ns) {
			if !used.Has(commodityKey{ns, cm.Mnemonic}) {
				continue
			}
			symbol, err := NormalizeCommodity(cm.Mnemonic)
			if err != nil {
				return nil, nil, fmt.Errorf("commodity %s: %w", cm, err)
			}
			if _, ok := bySymbol[symbol]; !ok {
				bySymbol[symbol] = cm
			}
			res = append(res, &beancount.Commodity{
				Date:   d,
				Symbol: symbol,
				Meta: beancount.Metadata{
					{Key: "export", Value: ns + ":" + symbol},
					{Key: "name", Value: cm.FullName},
					{Key: "price", Value: fmt.Sprintf(c.config.PriceSource, symbol)},
				},
			})
		}
	}
	return res, bySymbol, nil
}
