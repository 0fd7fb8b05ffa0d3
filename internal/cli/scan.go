package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmarlow/fieldscan/internal/visit"
)

func newScanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan a survey archive and preview the visit table",
		Long:  "Scan a directory tree of PlotID/YYYYMMDD capture directories into a visit table, optionally filtered, and print a preview or aggregate counts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(os.Stdout, getRoot(args), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.plots, "plot", nil, "only these plot ids (repeatable)")
	cmd.Flags().IntSliceVar(&opts.years, "year", nil, "only these years (repeatable)")
	cmd.Flags().StringVar(&opts.from, "from", "", "inclusive start date")
	cmd.Flags().StringVar(&opts.to, "to", "", "inclusive end date")
	cmd.Flags().IntVar(&opts.recentDays, "recent", 0, "only visits from the last N days")
	cmd.Flags().BoolVar(&opts.monthly, "monthly", false, "print monthly visit counts")
	cmd.Flags().BoolVar(&opts.yearly, "yearly", false, "print yearly visit counts")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print headline figures")

	return cmd
}

type scanOptions struct {
	plots      []string
	years      []int
	from, to   string
	recentDays int
	monthly    bool
	yearly     bool
	summary    bool
}

func runScan(w io.Writer, root string, opts scanOptions) error {
	table, err := scanTable(root)
	if err != nil {
		return err
	}
	if table.Empty() {
		printNoVisits(w)
		return nil
	}

	table, err = applyFilters(table, opts)
	if err != nil {
		return err
	}

	switch {
	case opts.monthly:
		if isJSON() {
			return printJSON(w, table.Monthly())
		}
		return printMonthly(w, table.Monthly())
	case opts.yearly:
		if isJSON() {
			return printJSON(w, table.Yearly())
		}
		return printYearly(w, table.Yearly())
	case opts.summary:
		if isJSON() {
			return printJSON(w, table.Summarize())
		}
		printSummary(w, table.Summarize())
		return nil
	}

	if isJSON() {
		return printJSON(w, table.Rows)
	}
	if err := printTablePreview(w, table); err != nil {
		return err
	}
	printCrossYearExample(w, table)
	return nil
}

// scanTable scans root and returns the sorted table with derived fields.
func scanTable(root string) (visit.Table, error) {
	visits, err := visit.Scan(root)
	if err != nil {
		return visit.Table{}, err
	}
	return visit.NewTable(visits).WithDerived().SortByPlotDate(), nil
}

// applyFilters narrows the table per the scan flags. Unparsable date flags
// are the caller's error and propagate.
func applyFilters(t visit.Table, opts scanOptions) (visit.Table, error) {
	var start, end *time.Time
	if opts.from != "" {
		d, err := visit.ParseDate(opts.from)
		if err != nil {
			return visit.Table{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = &d
	}
	if opts.to != "" {
		d, err := visit.ParseDate(opts.to)
		if err != nil {
			return visit.Table{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = &d
	}
	t = t.FilterDateRange(start, end)

	if len(opts.years) > 0 {
		t = t.FilterYears(opts.years...)
	}
	if len(opts.plots) > 0 {
		t = t.FilterPlots(opts.plots...)
	}
	if opts.recentDays > 0 {
		t = t.Recent(opts.recentDays)
	}
	return t, nil
}

// printCrossYearExample prints the latest year's visit count when the table
// spans more than one year.
func printCrossYearExample(w io.Writer, t visit.Table) {
	counts := t.Yearly()
	if len(counts) < 2 {
		return
	}
	latest := counts[len(counts)-1]
	fmt.Fprintf(w, "\nVisits in %d: %d\n", latest.Year, latest.Visits)
}

// printNoVisits explains an empty scan instead of printing an empty table.
func printNoVisits(w io.Writer) {
	fmt.Fprintln(w, "No valid plot directories found!")
	fmt.Fprintln(w, "Make sure the directory structure follows: PlotID/YYYYMMDD")
}
