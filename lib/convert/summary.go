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
	"github.com/shopspring/decimal"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/compare"
)

// Balance is the balance of an account in a commodity.
type Balance struct {
	Account string
	Amount  beancount.Amount
}

type balanceKey struct {
	account, commodity string
}

// Balances sums up the units of all postings by account and commodity,
// ordered by account and commodity. Accounts without postings are omitted.
func Balances(ds []beancount.Directive) []Balance {
	sums := make(map[balanceKey]decimal.Decimal)
	var keys []balanceKey
	for _, d := range ds {
		t, ok := d.(*beancount.Transaction)
		if !ok {
			continue
		}
		for _, p := range t.Postings {
			k := balanceKey{p.Account, p.Units.Currency}
			if _, ok := sums[k]; !ok {
				keys = append(keys, k)
			}
			sums[k] = sums[k].Add(p.Units.Number)
		}
	}
	compare.Sort(keys, compare.Combine(
		compare.By(func(k balanceKey) string { return k.account }),
		compare.By(func(k balanceKey) string { return k.commodity }),
	))
	res := make([]Balance, 0, len(keys))
	for _, k := range keys {
		res = append(res, Balance{
			Account: k.account,
			Amount:  beancount.Amount{Number: sums[k], Currency: k.commodity},
		})
	}
	return res
}
