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
	"regexp"
	"strings"

	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

var (
	spaces = regexp.MustCompile(` +`)
	slash  = regexp.MustCompile(`-*/-*`)
	at     = regexp.MustCompile(`-*@-*`)
)

// ConvertAccountName derives the beancount account name of a GnuCash
// account. The first segment of the result is always the category of
// the account's type.
func (c *Converter) ConvertAccountName(a *gnucash.Account) (string, error) {
	category, ok := c.config.Categories[a.Type]
	if !ok {
		return "", fmt.Errorf("%w %s of account %s", ErrUnknownAccountType, a.Type, a.FullName)
	}
	name := strings.ReplaceAll(a.FullName, c.config.Separator, ":")
	name = spaces.ReplaceAllString(name, "-")
	name = slash.ReplaceAllString(name, "-")
	name = at.ReplaceAllString(name, "-at-")
	if top, _, _ := strings.Cut(name, ":"); top != category.String() {
		name = category.String() + ":" + name
	}
	return name, nil
}

// NormalizeCommodity turns a GnuCash mnemonic into a valid beancount
// symbol: at least two characters long, neither starting nor ending with
// a digit.
func NormalizeCommodity(symbol string) (string, error) {
	if symbol == "" {
		return "", ErrEmptyCommodity
	}
	if isDigit(symbol[0]) {
		symbol = "X" + symbol
	}
	if isDigit(symbol[len(symbol)-1]) {
		symbol += "X"
	}
	for len(symbol) < 2 {
		symbol += "X"
	}
	return symbol, nil
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
