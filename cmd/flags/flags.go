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

package flags

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/pflag"

	"github.com/sboehler/gnucash2beancount/lib/common/date"
)

// DateFlag manages a flag to determine a date.
type DateFlag time.Time

var _ pflag.Value = (*DateFlag)(nil)

func (tf DateFlag) String() string {
	if tf.Value().IsZero() {
		return ""
	}
	return date.Format(tf.Value())
}

// Set implements pflag.Value.
func (tf *DateFlag) Set(v string) error {
	t, err := time.Parse(date.Layout, v)
	if err != nil {
		return err
	}
	*tf = (DateFlag)(t)
	return nil
}

// Type implements pflag.Value.
func (tf DateFlag) Type() string {
	return "YYYY-MM-DD"
}

// Value returns the flag value.
func (tf DateFlag) Value() time.Time {
	return time.Time(tf)
}

// ValueOr returns the flag value, or t if the flag has not been set.
func (tf DateFlag) ValueOr(t time.Time) time.Time {
	v := tf.Value()
	if v.IsZero() {
		return t
	}
	return v
}

var commodityRegex = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]*[A-Z0-9]$`)

// CommodityFlag manages a flag to parse a beancount commodity symbol.
type CommodityFlag struct {
	val string
}

var _ pflag.Value = (*CommodityFlag)(nil)

// Set implements pflag.Value.
func (cf *CommodityFlag) Set(v string) error {
	if !commodityRegex.MatchString(v) {
		return fmt.Errorf("invalid commodity %q", v)
	}
	cf.val = v
	return nil
}

// Type implements pflag.Value.
func (cf CommodityFlag) Type() string {
	return "<commodity>"
}

func (cf CommodityFlag) String() string {
	return cf.val
}

// Value returns the commodity, or the empty string if the flag has not
// been set.
func (cf CommodityFlag) Value() string {
	return cf.val
}
