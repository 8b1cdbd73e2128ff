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

package date

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	var (
		zurich = time.FixedZone("CET", 3600)
		tests  = []struct {
			input time.Time
			want  time.Time
		}{
			{
				input: time.Date(2020, 1, 1, 10, 59, 0, 0, time.UTC),
				want:  Date(2020, 1, 1),
			},
			{
				input: time.Date(2020, 1, 1, 0, 30, 0, 0, zurich),
				want:  Date(2020, 1, 1),
			},
			{
				input: time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC),
				want:  Date(2019, 12, 31),
			},
		}
	)
	for _, test := range tests {
		if got := Day(test.input); got != test.want {
			t.Errorf("Day(%v): got %v, want %v", test.input, got, test.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	var tests = []struct {
		input string
		want  time.Time
	}{
		{"2020-03-04 10:59:00 +0000", time.Date(2020, 3, 4, 10, 59, 0, 0, time.UTC)},
		{"2020-03-04 10:59:00", time.Date(2020, 3, 4, 10, 59, 0, 0, time.UTC)},
		{"20200304105900", time.Date(2020, 3, 4, 10, 59, 0, 0, time.UTC)},
		{"2020-03-04T10:59:00Z", time.Date(2020, 3, 4, 10, 59, 0, 0, time.UTC)},
		{"2020-03-04", Date(2020, 3, 4)},
	}
	for _, test := range tests {
		got, err := ParseTimestamp(test.input)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) returned unexpected error: %v", test.input, err)
		}
		if !got.Equal(test.want) {
			t.Errorf("ParseTimestamp(%q): got %v, want %v", test.input, got, test.want)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Errorf("ParseTimestamp(%q) returned no error, expected one", "yesterday")
	}
}
