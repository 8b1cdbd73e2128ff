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

package table

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// TextRenderer renders a table to text.
type TextRenderer struct {
	Color bool
	Round int32
}

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// Render renders the table. Short rows are padded with empty cells.
func (r *TextRenderer) Render(t *Table, w io.Writer) error {
	color.NoColor = !r.Color
	widths := make([]int, t.Width())
	for _, row := range t.rows {
		for i, c := range row.cells {
			if l := r.cellWidth(c); l > widths[i] {
				widths[i] = l
			}
		}
	}
	for _, row := range t.rows {
		for len(row.cells) < t.Width() {
			row.AddEmpty()
		}
		if err := r.renderRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) renderRow(w io.Writer, row *Row, widths []int) error {
	sep := row.cells[0].isSep()
	var b strings.Builder
	if sep {
		b.WriteString("+-")
	} else {
		b.WriteString("| ")
	}
	for i, c := range row.cells {
		if i > 0 {
			if sep {
				b.WriteString("-+-")
			} else {
				b.WriteString(" | ")
			}
		}
		r.renderCell(&b, c, widths[i])
	}
	if sep {
		b.WriteString("-+\n")
	} else {
		b.WriteString(" |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *TextRenderer) renderCell(b *strings.Builder, c cell, width int) {
	switch t := c.(type) {
	case separatorCell:
		b.WriteString(strings.Repeat("-", width))
	case textCell:
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(t.content))
		if t.align == Right {
			b.WriteString(pad + t.content)
		} else {
			b.WriteString(t.content + pad)
		}
	case numberCell:
		s := r.format(t)
		b.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(s)))
		switch t.n.Sign() {
		case -1:
			red.Fprint(b, s)
		case 1:
			green.Fprint(b, s)
		default:
			fmt.Fprint(b, s)
		}
	}
}

func (r *TextRenderer) cellWidth(c cell) int {
	switch t := c.(type) {
	case textCell:
		return utf8.RuneCountInString(t.content)
	case numberCell:
		return utf8.RuneCountInString(r.format(t))
	}
	return 0
}

func (r *TextRenderer) format(c numberCell) string {
	return addThousandsSep(c.n.StringFixed(r.Round))
}

func addThousandsSep(s string) string {
	var b strings.Builder
	if strings.HasPrefix(s, "-") {
		b.WriteByte('-')
		s = s[1:]
	}
	whole, frac, found := strings.Cut(s, ".")
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if found {
		b.WriteString("." + frac)
	}
	return b.String()
}
