package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jmarlow/fieldscan/internal/meta"
	"github.com/jmarlow/fieldscan/internal/visit"
)

const previewRows = 10

const dateLayout = "2006-01-02"

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTablePreview prints the first rows of a visit table followed by its
// shape and column types.
func printTablePreview(w io.Writer, t visit.Table) error {
	if err := printVisitRows(w, t, previewRows); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nShape: (%d rows, %d columns)\n", t.Len(), len(t.Columns()))
	fmt.Fprintln(w, "Column types:")
	types := t.ColumnTypes()
	for _, c := range t.Columns() {
		fmt.Fprintf(w, "  %s: %s\n", c, types[c])
	}
	return nil
}

// printVisitRows prints up to limit rows of the table; limit <= 0 prints all.
func printVisitRows(w io.Writer, t visit.Table, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"PLOT", "DATE"}
	if t.HasDerived() {
		header = append(header, "YEAR", "MONTH", "DOY", "DAYS")
	}
	header = append(header, t.MetaFields()...)
	header = append(header, "PATH")
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, r := range rows {
		cells := []string{r.PlotID, r.VisitDate.Format(dateLayout)}
		if t.HasDerived() {
			cells = append(cells,
				fmt.Sprintf("%d", r.Year),
				fmt.Sprintf("%d", r.Month),
				fmt.Sprintf("%d", r.DayOfYear),
				fmt.Sprintf("%d", r.DaysSinceFirst),
			)
		}
		for _, f := range t.MetaFields() {
			cells = append(cells, orDash(r.Meta[f]))
		}
		cells = append(cells, truncate(r.FullPath, 60))
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printMonthly prints (year, month) visit counts.
func printMonthly(w io.Writer, counts []visit.MonthCount) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tMONTH\tVISITS")
	for _, c := range counts {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", c.Year, c.Month, c.Visits)
	}
	return tw.Flush()
}

// printYearly prints per-year visit counts.
func printYearly(w io.Writer, counts []visit.YearCount) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tVISITS")
	for _, c := range counts {
		fmt.Fprintf(tw, "%d\t%d\n", c.Year, c.Visits)
	}
	return tw.Flush()
}

// printSummary prints headline figures for a table.
func printSummary(w io.Writer, s visit.Summary) {
	fmt.Fprintln(w, "=== Plot Visit Summary ===")
	fmt.Fprintf(w, "Total visits: %d\n", s.TotalVisits)
	fmt.Fprintf(w, "Unique plots: %d\n", s.UniquePlots)
	if s.TotalVisits > 0 {
		fmt.Fprintf(w, "Date range: %s to %s\n",
			s.FirstVisit.Format(dateLayout), s.LastVisit.Format(dateLayout))
		fmt.Fprintf(w, "Years: %v\n", s.Years)
	}
	if len(s.SwVersions) > 0 {
		fmt.Fprintln(w, "\n=== Software Version Info ===")
		for _, vc := range s.SwVersions {
			fmt.Fprintf(w, "  %s: %d visits\n", vc.Version, vc.Visits)
		}
	}
}

// printBandRecords prints one line per visit with its band count and firmware.
func printBandRecords(w io.Writer, records []meta.VisitBandRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLOT\tDATE\tSOFTWARE\tSWVERSION\tBANDS")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			rec.PlotID, rec.VisitDate.Format(dateLayout),
			orDash(rec.Software), orDash(rec.SwVersion), len(rec.Bands))
	}
	return tw.Flush()
}

// printAssignments prints the firmware band-assignment comparison.
func printAssignments(w io.Writer, assignments []meta.BandAssignment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOFTWARE\tBAND\tNAME\tCOUNT\tWAVELENGTH\tFWHM")
	for _, a := range assignments {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n",
			a.Software, a.BandIndex, a.BandName, a.Count,
			orDash(a.CentralWavelength), orDash(a.WavelengthFWHM))
	}
	return tw.Flush()
}

// printGrid prints the compact firmware-by-band pivot.
func printGrid(w io.Writer, grid meta.AssignmentGrid) error {
	if len(grid.Rows) == 0 {
		fmt.Fprintln(w, "No band assignments found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"SOFTWARE"}
	for _, idx := range grid.BandIndexes {
		header = append(header, fmt.Sprintf("BAND%d", idx))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range grid.Rows {
		cells := []string{row.Software}
		for _, idx := range grid.BandIndexes {
			cells = append(cells, row.Cells[idx])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// orDash renders an optional value, "-" when absent.
func orDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
