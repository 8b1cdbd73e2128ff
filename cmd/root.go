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

// Package cmd is the main command file for Cobra
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/sboehler/gnucash2beancount/cmd/flags"
	"github.com/sboehler/gnucash2beancount/lib/beancount/printer"
	"github.com/sboehler/gnucash2beancount/lib/common/date"
	"github.com/sboehler/gnucash2beancount/lib/common/table"
	"github.com/sboehler/gnucash2beancount/lib/convert"
	"github.com/sboehler/gnucash2beancount/lib/gnucash/source"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {
	var r runner

	cmd := &cobra.Command{
		Use:   "gnucash2beancount <input> <output>",
		Short: "gnucash2beancount converts GnuCash books to beancount",
		Long: `Convert a GnuCash book, stored as SQLite database or (gzipped) XML file, into a beancount ledger.` +
			` Transactions are grouped by their main account, and securities are booked as lots with FIFO matching.`,

		Args: cobra.ExactArgs(2),

		Run: r.run,
	}
	r.setupFlags(cmd)
	return cmd
}

// Execute runs the command. This is called by main.main().
func Execute() {
	if err := CreateCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type runner struct {
	currency flags.CommodityFlag
	today    flags.DateFlag
	config   string
	progress bool
	summary  bool
	color    bool
}

func (r *runner) setupFlags(c *cobra.Command) {
	c.Flags().VarP(&r.currency, "currency", "c", "operating currency (default USD); price hints follow price_source in --config")
	c.Flags().Var(&r.today, "today", "open date of accounts without transactions (default today)")
	c.Flags().StringVar(&r.config, "config", "", "YAML configuration file")
	c.Flags().BoolVarP(&r.progress, "progress", "p", false, "show a progress bar")
	c.Flags().BoolVarP(&r.summary, "summary", "s", false, "print the final account balances")
	c.Flags().BoolVar(&r.color, "color", true, "print colored output")
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

var (
	green = color.New(color.FgGreen)
	bold  = color.New(color.Bold)
)

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	color.NoColor = !r.color
	cfg := convert.DefaultConfig()
	if r.config != "" {
		var err error
		if cfg, err = convert.LoadConfig(r.config); err != nil {
			return err
		}
	}
	if v := r.currency.Value(); v != "" {
		cfg.Currency = v
	}
	w := cmd.ErrOrStderr()

	bold.Fprintln(w, "Opening GnuCash file...")
	book, err := source.Open(cmd.Context(), args[0], cfg.Separator)
	if err != nil {
		return err
	}

	bold.Fprintln(w, "Start conversion...")
	c := convert.New(book, cfg, r.today.ValueOr(date.Today()))
	if r.progress {
		bar := startProgressBar(w, len(book.Transactions))
		defer bar.Finish()
		c.Progress = func(done, _ int) {
			bar.SetCurrent(int64(done))
		}
	}
	entries, err := c.Convert()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := printer.New().PrintEntries(&buf, entries); err != nil {
		return err
	}
	if err := atomic.WriteFile(args[1], &buf); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	if r.summary {
		if err := r.printSummary(w, convert.Balances(entries)); err != nil {
			return err
		}
	}
	green.Fprintln(w, "Done!")
	return nil
}

func (r *runner) printSummary(w io.Writer, bs []convert.Balance) error {
	tbl := table.New(3)
	tbl.AddSeparatorRow()
	tbl.AddRow().AddText("Account", table.Left).AddText("Commodity", table.Left).AddText("Balance", table.Right)
	tbl.AddSeparatorRow()
	for _, b := range bs {
		tbl.AddRow().AddText(b.Account, table.Left).AddText(b.Amount.Currency, table.Left).AddNumber(b.Amount.Number)
	}
	tbl.AddSeparatorRow()
	return (&table.TextRenderer{Color: r.color, Round: 2}).Render(tbl, w)
}

func startProgressBar(w io.Writer, total int) *pb.ProgressBar {
	return pb.New(total).SetWriter(w).Start()
}
