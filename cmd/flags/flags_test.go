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
	"testing"

	"github.com/sboehler/gnucash2beancount/lib/common/date"
)

func TestDateFlag(t *testing.T) {
	var f DateFlag
	def := date.Date(2020, 1, 1)

	if got := f.ValueOr(def); !got.Equal(def) {
		t.Errorf("ValueOr() of an unset flag = %v, want %v", got, def)
	}
	if err := f.Set("2021-06-30"); err != nil {
		t.Fatalf("Set() returned unexpected error: %v", err)
	}
	if got, want := f.ValueOr(def), date.Date(2021, 6, 30); !got.Equal(want) {
		t.Errorf("ValueOr() = %v, want %v", got, want)
	}
	if got := f.String(); got != "2021-06-30" {
		t.Errorf("String() = %q, want %q", got, "2021-06-30")
	}
	if err := f.Set("30.06.2021"); err == nil {
		t.Errorf("Set(%q) returned no error", "30.06.2021")
	}
}

func TestCommodityFlag(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"USD", true},
		{"CHF", true},
		{"X3M", true},
		{"VT.US", true},
		{"usd", false},
		{"3M", false},
		{"A", false},
		{"", false},
		{"US D", false},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			var f CommodityFlag

			err := f.Set(test.input)

			if test.valid && err != nil {
				t.Errorf("Set(%q) returned unexpected error: %v", test.input, err)
			}
			if !test.valid && err == nil {
				t.Errorf("Set(%q) returned no error", test.input)
			}
			if test.valid && f.Value() != test.input {
				t.Errorf("Value() = %q, want %q", f.Value(), test.input)
			}
		})
	}
}
