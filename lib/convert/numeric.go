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
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sboehler/gnucash2beancount/lib/gnucash"
)

// maxScale is the number of fractional digits of a quotient which has
// no finite decimal expansion.
const maxScale = 28

// NormalizeNumeric converts a GnuCash numeric of the form "n" or "n/d"
// into a decimal.
func NormalizeNumeric(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	num, denom, found := strings.Cut(strings.TrimPrefix(s, "-"), "/")
	n, err := parseUnsigned(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric %q: %w", s, err)
	}
	if found {
		d, err := parseUnsigned(denom)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid numeric %q: %w", s, err)
		}
		if d.IsZero() {
			return decimal.Zero, fmt.Errorf("invalid numeric %q: zero denominator", s)
		}
		n = quotient(n, d)
	}
	if neg {
		n = n.Neg()
	}
	return n, nil
}

func normalizeRational(r gnucash.Rational) (decimal.Decimal, error) {
	return NormalizeNumeric(r.String())
}

func parseUnsigned(s string) (decimal.Decimal, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return decimal.Zero, fmt.Errorf("malformed number %q", s)
	}
	return decimal.NewFromString(s)
}

var (
	two  = big.NewInt(2)
	five = big.NewInt(5)
)

// quotient divides n by d. The result is exact if the decimal expansion of
// the quotient is finite, which is the case if the denominator has no prime
// factors other than 2 and 5. Otherwise, it is rounded to maxScale digits.
func quotient(n, d decimal.Decimal) decimal.Decimal {
	den := new(big.Int).Set(d.Coefficient())
	den.Abs(den)
	if e := d.Exponent(); e > 0 {
		den.Mul(den, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e)), nil))
	}
	twos, den := removeFactor(den, two)
	fives, den := removeFactor(den, five)
	if den.Cmp(big.NewInt(1)) != 0 {
		return n.DivRound(d, maxScale)
	}
	scale := twos
	if fives > scale {
		scale = fives
	}
	if e := n.Exponent(); e < 0 {
		scale -= e
	}
	return n.DivRound(d, scale)
}

func removeFactor(n, f *big.Int) (int32, *big.Int) {
	var (
		count int32
		q, r  big.Int
	)
	for n.Sign() != 0 {
		q.QuoRem(n, f, &r)
		if r.Sign() != 0 {
			break
		}
		n = new(big.Int).Set(&q)
		count++
	}
	return count, n
}
