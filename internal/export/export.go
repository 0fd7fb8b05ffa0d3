// Package export writes a visit table to a caller-requested snapshot file.
// The tool itself keeps no state; these are one-shot exports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jmarlow/fieldscan/internal/visit"
)

const dateLayout = "2006-01-02"

// WriteCSV writes the table as CSV with a header row. Absent metadata
// values are left empty.
func WriteCSV(w io.Writer, t visit.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(rowValues(t, row)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// WriteJSON writes the table rows as indented JSON.
func WriteJSON(w io.Writer, t visit.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Rows); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// rowValues renders one row in the table's column order.
func rowValues(t visit.Table, row visit.Row) []string {
	values := []string{row.PlotID, row.VisitDate.Format(dateLayout), row.FullPath}
	if t.HasDerived() {
		values = append(values,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.Month),
			strconv.Itoa(row.DayOfYear),
			strconv.Itoa(row.DaysSinceFirst),
		)
	}
	for _, f := range t.MetaFields() {
		if v := row.Meta[f]; v != nil {
			values = append(values, *v)
		} else {
			values = append(values, "")
		}
	}
	return values
}
