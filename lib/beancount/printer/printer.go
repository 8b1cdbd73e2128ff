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

package printer

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sboehler/gnucash2beancount/lib/beancount"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
)

// Printer prints directives.
type Printer struct{}

// New creates a new Printer.
func New() *Printer {
	return new(Printer)
}

// PrintDirective prints a directive to the given Writer. The output ends
// with a newline.
func (p Printer) PrintDirective(w io.Writer, directive beancount.Directive) (n int, err error) {
	switch d := directive.(type) {
	case *beancount.Option:
		return fmt.Fprintf(w, "option %s %s\n", quote(d.Name), quote(d.Value))
	case *beancount.Text:
		return fmt.Fprintln(w, d.Line)
	case *beancount.Open:
		return p.printOpen(w, d)
	case *beancount.Commodity:
		return p.printCommodity(w, d)
	case *beancount.Transaction:
		return p.printTransaction(w, d)
	case *beancount.Price:
		return fmt.Fprintf(w, "%s price %s %s\n", date.Format(d.Date), d.Commodity, d.Amount)
	}
	return 0, fmt.Errorf("unknown directive: %v", directive)
}

// PrintEntries prints a sequence of directives. Transactions, commodities
// and text lines are preceded by a blank line, as is every change of the
// directive kind, so that runs of options, opens and prices stay compact.
func (p Printer) PrintEntries(w io.Writer, ds []beancount.Directive) (n int, err error) {
	var previous string
	for i, d := range ds {
		kind := fmt.Sprintf("%T", d)
		if i > 0 && (separated(d) || kind != previous) {
			c, err := io.WriteString(w, "\n")
			n += c
			if err != nil {
				return n, err
			}
		}
		previous = kind
		c, err := p.PrintDirective(w, d)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func separated(d beancount.Directive) bool {
	switch d.(type) {
	case *beancount.Transaction, *beancount.Commodity, *beancount.Text:
		return true
	}
	return false
}

func (p Printer) printOpen(w io.Writer, o *beancount.Open) (n int, err error) {
	c, err := fmt.Fprintf(w, "%s open %s", date.Format(o.Date), o.Account)
	n += c
	if err != nil {
		return n, err
	}
	if len(o.Currencies) > 0 {
		c, err = fmt.Fprintf(w, " %s", strings.Join(o.Currencies, ","))
		n += c
		if err != nil {
			return n, err
		}
	}
	c, err = io.WriteString(w, "\n")
	n += c
	if err != nil {
		return n, err
	}
	c, err = p.printMetadata(w, o.Meta, 2)
	n += c
	return n, err
}

func (p Printer) printCommodity(w io.Writer, cm *beancount.Commodity) (n int, err error) {
	c, err := fmt.Fprintf(w, "%s commodity %s\n", date.Format(cm.Date), cm.Symbol)
	n += c
	if err != nil {
		return n, err
	}
	c, err = p.printMetadata(w, cm.Meta, 2)
	n += c
	return n, err
}

func (p Printer) printTransaction(w io.Writer, t *beancount.Transaction) (n int, err error) {
	c, err := fmt.Fprintf(w, "%s %s", date.Format(t.Date), t.Flag)
	n += c
	if err != nil {
		return n, err
	}
	if t.Payee != "" {
		c, err = fmt.Fprintf(w, " %s", quote(t.Payee))
		n += c
		if err != nil {
			return n, err
		}
	}
	c, err = fmt.Fprintf(w, " %s\n", quote(t.Narration))
	n += c
	if err != nil {
		return n, err
	}
	var padding int
	for _, po := range t.Postings {
		if l := utf8.RuneCountInString(po.Account); l > padding {
			padding = l
		}
	}
	for _, po := range t.Postings {
		c, err = p.printPosting(w, po, padding)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (p Printer) printPosting(w io.Writer, po beancount.Posting, padding int) (n int, err error) {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-*s  %s", padding, po.Account, po.Units)
	if po.Cost != nil {
		fmt.Fprintf(&b, " {%s %s", po.Cost.Number, po.Cost.Currency)
		if po.Cost.HasDate() {
			fmt.Fprintf(&b, ", %s", date.Format(po.Cost.Date))
		}
		if po.Cost.Label != "" {
			fmt.Fprintf(&b, ", %s", quote(po.Cost.Label))
		}
		b.WriteString("}")
	}
	switch {
	case po.Total != nil:
		fmt.Fprintf(&b, " @@ %s", po.Total)
	case po.Price != nil:
		fmt.Fprintf(&b, " @ %s", po.Price)
	}
	b.WriteString("\n")
	c, err := io.WriteString(w, b.String())
	n += c
	if err != nil {
		return n, err
	}
	c, err = p.printMetadata(w, po.Meta, 4)
	n += c
	return n, err
}

func (p Printer) printMetadata(w io.Writer, m beancount.Metadata, indent int) (n int, err error) {
	for _, e := range m {
		c, err := fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat(" ", indent), e.Key, quote(e.Value))
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}
