// Package visit provides the field-survey visit domain model and the
// in-memory table built by scanning a capture archive.
package visit

import "time"

// Visit represents one recorded survey event: a plot visited on a date,
// backed by a capture directory on disk.
type Visit struct {
	PlotID    string    `json:"plot_id"`
	VisitDate time.Time `json:"visit_date"`
	FullPath  string    `json:"full_path"`
}

// Row is one table row: a Visit plus derived date fields and any metadata
// columns attached by enrichment. Derived fields are only meaningful after
// Table.WithDerived has run.
type Row struct {
	Visit
	Year           int `json:"year,omitempty"`
	Month          int `json:"month,omitempty"`
	DayOfYear      int `json:"day_of_year,omitempty"`
	DaysSinceFirst int `json:"days_since_first"`

	// Meta holds extra columns keyed by field name. A nil value means the
	// field was requested but absent for this visit.
	Meta map[string]*string `json:"meta,omitempty"`
}

// Table is an ordered collection of visit rows. Operations are pure: each
// returns a new Table and leaves the receiver untouched. Duplicate
// (plot, date) pairs are preserved.
type Table struct {
	Rows []Row

	derived    bool
	metaFields []string
}

// NewTable builds a table from scanned visits, in the order given.
func NewTable(visits []Visit) Table {
	rows := make([]Row, len(visits))
	for i, v := range visits {
		rows[i] = Row{Visit: v}
	}
	return Table{Rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// HasDerived reports whether derived date fields have been computed.
func (t Table) HasDerived() bool { return t.derived }

// MetaFields returns the names of attached metadata columns, in attach order.
func (t Table) MetaFields() []string { return t.metaFields }

// Columns returns the table's column names in display order.
func (t Table) Columns() []string {
	cols := []string{"plot_id", "visit_date", "full_path"}
	if t.derived {
		cols = append(cols, "year", "month", "day_of_year", "days_since_first")
	}
	cols = append(cols, t.metaFields...)
	return cols
}

// ColumnTypes returns a column name -> type name mapping for the preview
// output. Metadata columns are always textual.
func (t Table) ColumnTypes() map[string]string {
	types := map[string]string{
		"plot_id":    "string",
		"visit_date": "date",
		"full_path":  "string",
	}
	if t.derived {
		types["year"] = "int"
		types["month"] = "int"
		types["day_of_year"] = "int"
		types["days_since_first"] = "int"
	}
	for _, f := range t.metaFields {
		types[f] = "string"
	}
	return types
}

// clone copies the rows so operations never alias the receiver's slice.
func (t Table) clone(rows []Row) Table {
	out := Table{Rows: rows, derived: t.derived}
	out.metaFields = append(out.metaFields, t.metaFields...)
	return out
}

// AttachMeta returns a table with one metadata map per row attached as extra
// columns. meta must have exactly one entry per row, in row order.
func (t Table) AttachMeta(fields []string, meta []map[string]*string) Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	for i := range rows {
		if i < len(meta) {
			rows[i].Meta = meta[i]
		}
	}
	out := t.clone(rows)
	for _, f := range fields {
		if !containsString(out.metaFields, f) {
			out.metaFields = append(out.metaFields, f)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
