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
	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// ConvertAccount creates the open directive of an account. The account
// is opened at the date of its first split, or today if it has none.
func (c *Converter) ConvertAccount(a *gnucash.Account) (*beancount.Open, error) {
	name, err := c.ConvertAccountName(a)
	if err != nil {
		return nil, err
	}
	open := &beancount.Open{
		Date:    c.today,
		Account: name,
		Meta:    beancount.Metadata{{Key: "description", Value: a.Description}},
	}
	if a.Commodity != nil {
		symbol, err := NormalizeCommodity(a.Commodity.Mnemonic)
		if err != nil {
			return nil, err
		}
		open.Currencies = []string{symbol}
	}
	if len(a.Splits) > 0 {
		s := c.book.Split(a.Splits[0])
		open.Date = date.Day(c.book.Transaction(s.Transaction).Date)
	}
	return open, nil
}
