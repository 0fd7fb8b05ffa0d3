package visit

import (
	"sort"
	"time"
)

// WithDerived returns a table with year, month, day-of-year and
// days-since-first columns computed from each row's visit date. The
// days-since-first baseline is the minimum visit date over the whole table,
// so applying WithDerived twice yields the same values.
func (t Table) WithDerived() Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)

	var first time.Time
	for i, r := range rows {
		if i == 0 || r.VisitDate.Before(first) {
			first = r.VisitDate
		}
	}

	for i := range rows {
		d := rows[i].VisitDate
		rows[i].Year = d.Year()
		rows[i].Month = int(d.Month())
		rows[i].DayOfYear = d.YearDay()
		rows[i].DaysSinceFirst = int(d.Sub(first).Hours() / 24)
	}

	out := t.clone(rows)
	out.derived = true
	return out
}

// FilterDateRange returns rows with start <= visit date <= end, inclusive.
// Either bound may be nil; with both nil the table is returned unchanged.
func (t Table) FilterDateRange(start, end *time.Time) Table {
	if start == nil && end == nil {
		return t
	}
	var rows []Row
	for _, r := range t.Rows {
		if start != nil && r.VisitDate.Before(*start) {
			continue
		}
		if end != nil && r.VisitDate.After(*end) {
			continue
		}
		rows = append(rows, r)
	}
	return t.clone(rows)
}

// FilterYears returns rows whose visit year is in the given set.
func (t Table) FilterYears(years ...int) Table {
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}
	var rows []Row
	for _, r := range t.Rows {
		if want[r.VisitDate.Year()] {
			rows = append(rows, r)
		}
	}
	return t.clone(rows)
}

// FilterPlots returns rows whose plot id is in the given set, sorted by
// visit date ascending.
func (t Table) FilterPlots(ids ...string) Table {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var rows []Row
	for _, r := range t.Rows {
		if want[r.PlotID] {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].VisitDate.Before(rows[j].VisitDate)
	})
	return t.clone(rows)
}

// Recent returns rows from the last N days, measured back from the latest
// visit date in the table. The comparison is strict: a row exactly N days
// before the latest date is excluded.
func (t Table) Recent(days int) Table {
	if len(t.Rows) == 0 {
		return t.clone(nil)
	}
	latest := t.Rows[0].VisitDate
	for _, r := range t.Rows[1:] {
		if r.VisitDate.After(latest) {
			latest = r.VisitDate
		}
	}
	threshold := latest.AddDate(0, 0, -days)
	var rows []Row
	for _, r := range t.Rows {
		if r.VisitDate.After(threshold) {
			rows = append(rows, r)
		}
	}
	return t.clone(rows)
}

// SortByPlotDate returns the table sorted by (plot id, visit date) ascending.
func (t Table) SortByPlotDate() Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlotID != rows[j].PlotID {
			return rows[i].PlotID < rows[j].PlotID
		}
		return rows[i].VisitDate.Before(rows[j].VisitDate)
	})
	return t.clone(rows)
}

// MonthCount is one (year, month) group with its visit count.
type MonthCount struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Visits int `json:"visits"`
}

// Monthly returns visit counts grouped by (year, month), ascending.
func (t Table) Monthly() []MonthCount {
	counts := make(map[[2]int]int)
	for _, r := range t.Rows {
		counts[[2]int{r.VisitDate.Year(), int(r.VisitDate.Month())}]++
	}
	keys := make([][2]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	out := make([]MonthCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthCount{Year: k[0], Month: k[1], Visits: counts[k]})
	}
	return out
}

// YearCount is one year group with its visit count.
type YearCount struct {
	Year   int `json:"year"`
	Visits int `json:"visits"`
}

// Yearly returns visit counts grouped by year, ascending.
func (t Table) Yearly() []YearCount {
	counts := make(map[int]int)
	for _, r := range t.Rows {
		counts[r.VisitDate.Year()]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]YearCount, 0, len(years))
	for _, y := range years {
		out = append(out, YearCount{Year: y, Visits: counts[y]})
	}
	return out
}

// VersionCount is one software version with the number of visits tagged with it.
type VersionCount struct {
	Version string `json:"version"`
	Visits  int    `json:"visits"`
}

// Summary holds the headline figures for a visit table.
type Summary struct {
	TotalVisits int            `json:"total_visits"`
	UniquePlots int            `json:"unique_plots"`
	FirstVisit  time.Time      `json:"first_visit"`
	LastVisit   time.Time      `json:"last_visit"`
	Years       []int          `json:"years"`
	SwVersions  []VersionCount `json:"sw_versions,omitempty"`
}

// Summarize computes headline figures: totals, plot count, date range,
// years present, and SwVersion counts when that column is attached.
func (t Table) Summarize() Summary {
	s := Summary{TotalVisits: len(t.Rows)}
	if len(t.Rows) == 0 {
		return s
	}

	plots := make(map[string]bool)
	years := make(map[int]bool)
	s.FirstVisit = t.Rows[0].VisitDate
	s.LastVisit = t.Rows[0].VisitDate
	for _, r := range t.Rows {
		plots[r.PlotID] = true
		years[r.VisitDate.Year()] = true
		if r.VisitDate.Before(s.FirstVisit) {
			s.FirstVisit = r.VisitDate
		}
		if r.VisitDate.After(s.LastVisit) {
			s.LastVisit = r.VisitDate
		}
	}
	s.UniquePlots = len(plots)
	for y := range years {
		s.Years = append(s.Years, y)
	}
	sort.Ints(s.Years)

	if containsString(t.metaFields, "SwVersion") {
		counts := make(map[string]int)
		var order []string
		for _, r := range t.Rows {
			v := r.Meta["SwVersion"]
			if v == nil {
				continue
			}
			if counts[*v] == 0 {
				order = append(order, *v)
			}
			counts[*v]++
		}
		sort.SliceStable(order, func(i, j int) bool {
			return counts[order[i]] > counts[order[j]]
		})
		for _, v := range order {
			s.SwVersions = append(s.SwVersions, VersionCount{Version: v, Visits: counts[v]})
		}
	}

	return s
}
