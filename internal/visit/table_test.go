package visit

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTable() Table {
	return NewTable([]Visit{
		{PlotID: "PlotB", VisitDate: date(2023, 6, 15), FullPath: "/r/PlotB/20230615"},
		{PlotID: "PlotA", VisitDate: date(2023, 1, 1), FullPath: "/r/PlotA/20230101"},
		{PlotID: "PlotA", VisitDate: date(2024, 3, 1), FullPath: "/r/PlotA/20240301"},
		{PlotID: "PlotC", VisitDate: date(2024, 3, 1), FullPath: "/r/PlotC/20240301"},
		{PlotID: "PlotA", VisitDate: date(2023, 1, 1), FullPath: "/r/PlotA/20230101"}, // duplicate preserved
	})
}

func TestWithDerived(t *testing.T) {
	table := testTable().WithDerived()

	if !table.HasDerived() {
		t.Fatal("expected derived fields")
	}

	r := table.Rows[0] // PlotB 2023-06-15
	if r.Year != 2023 || r.Month != 6 {
		t.Errorf("year/month = %d/%d, want 2023/6", r.Year, r.Month)
	}
	if r.DayOfYear != 166 {
		t.Errorf("day_of_year = %d, want 166", r.DayOfYear)
	}
	// Baseline is the table-wide minimum, 2023-01-01.
	if r.DaysSinceFirst != 165 {
		t.Errorf("days_since_first = %d, want 165", r.DaysSinceFirst)
	}

	if table.Rows[1].DaysSinceFirst != 0 {
		t.Errorf("minimum row days_since_first = %d, want 0", table.Rows[1].DaysSinceFirst)
	}
}

func TestWithDerivedIdempotent(t *testing.T) {
	once := testTable().WithDerived()
	twice := once.WithDerived()

	for i := range once.Rows {
		if once.Rows[i].DaysSinceFirst != twice.Rows[i].DaysSinceFirst {
			t.Errorf("row %d: days_since_first changed on second application: %d != %d",
				i, once.Rows[i].DaysSinceFirst, twice.Rows[i].DaysSinceFirst)
		}
	}
}

func TestFilterDateRange(t *testing.T) {
	table := testTable()
	start := date(2023, 1, 1)
	end := date(2023, 12, 31)

	got := table.FilterDateRange(&start, &end)
	if got.Len() != 3 {
		t.Fatalf("got %d rows, want 3", got.Len())
	}
	for _, r := range got.Rows {
		if r.VisitDate.Before(start) || r.VisitDate.After(end) {
			t.Errorf("row %s outside range", r.VisitDate)
		}
	}

	// Inclusive bounds: a row exactly on the bound stays.
	exact := date(2023, 6, 15)
	got = table.FilterDateRange(&exact, &exact)
	if got.Len() != 1 {
		t.Errorf("inclusive bounds: got %d rows, want 1", got.Len())
	}

	// Both bounds nil returns the table unchanged.
	got = table.FilterDateRange(nil, nil)
	if got.Len() != table.Len() {
		t.Errorf("nil bounds: got %d rows, want %d", got.Len(), table.Len())
	}

	// Open start.
	got = table.FilterDateRange(nil, &end)
	if got.Len() != 3 {
		t.Errorf("open start: got %d rows, want 3", got.Len())
	}
}

func TestFilterYears(t *testing.T) {
	table := testTable()

	if got := table.FilterYears(2024).Len(); got != 2 {
		t.Errorf("single year: got %d rows, want 2", got)
	}
	if got := table.FilterYears(2023, 2024).Len(); got != 5 {
		t.Errorf("year set: got %d rows, want 5", got)
	}
	if got := table.FilterYears(2020).Len(); got != 0 {
		t.Errorf("absent year: got %d rows, want 0", got)
	}
}

func TestFilterPlotsSorted(t *testing.T) {
	table := testTable()

	got := table.FilterPlots("PlotA", "PlotC")
	if got.Len() != 4 {
		t.Fatalf("got %d rows, want 4", got.Len())
	}
	for i := 1; i < got.Len(); i++ {
		if got.Rows[i].VisitDate.Before(got.Rows[i-1].VisitDate) {
			t.Fatalf("rows not sorted by visit date: %v before %v",
				got.Rows[i].VisitDate, got.Rows[i-1].VisitDate)
		}
	}
}

func TestRecentIsStrict(t *testing.T) {
	table := NewTable([]Visit{
		{PlotID: "A", VisitDate: date(2024, 3, 31)},
		{PlotID: "A", VisitDate: date(2024, 3, 1)},  // exactly 30 days before max: excluded
		{PlotID: "A", VisitDate: date(2024, 3, 2)},  // 29 days: included
		{PlotID: "A", VisitDate: date(2024, 1, 15)}, // well outside
	})

	got := table.Recent(30)
	if got.Len() != 2 {
		t.Fatalf("got %d rows, want 2", got.Len())
	}
	for _, r := range got.Rows {
		if !r.VisitDate.After(date(2024, 3, 1)) {
			t.Errorf("row %s should be excluded", r.VisitDate)
		}
	}
}

func TestSortByPlotDate(t *testing.T) {
	got := testTable().SortByPlotDate()

	for i := 1; i < got.Len(); i++ {
		a, b := got.Rows[i-1], got.Rows[i]
		if a.PlotID > b.PlotID || (a.PlotID == b.PlotID && a.VisitDate.After(b.VisitDate)) {
			t.Fatalf("rows %d,%d out of order: %s/%s then %s/%s",
				i-1, i, a.PlotID, a.VisitDate, b.PlotID, b.VisitDate)
		}
	}
}

func TestMonthlySumsToYearly(t *testing.T) {
	table := testTable()

	perYear := make(map[int]int)
	for _, m := range table.Monthly() {
		perYear[m.Year] += m.Visits
	}

	for _, y := range table.Yearly() {
		if perYear[y.Year] != y.Visits {
			t.Errorf("year %d: monthly sum %d != yearly count %d", y.Year, perYear[y.Year], y.Visits)
		}
	}
}

func TestMonthlyOrdering(t *testing.T) {
	counts := testTable().Monthly()
	for i := 1; i < len(counts); i++ {
		a, b := counts[i-1], counts[i]
		if a.Year > b.Year || (a.Year == b.Year && a.Month >= b.Month) {
			t.Fatalf("monthly counts out of order at %d", i)
		}
	}
}

func TestAttachMetaAndSummarize(t *testing.T) {
	v1, v2 := "v1.2.3", "v2.0.0"
	table := testTable().AttachMeta([]string{"SwVersion"}, []map[string]*string{
		{"SwVersion": &v1},
		{"SwVersion": &v1},
		{"SwVersion": &v2},
		{"SwVersion": nil},
		{"SwVersion": &v1},
	})

	s := table.Summarize()
	if s.TotalVisits != 5 {
		t.Errorf("total = %d, want 5", s.TotalVisits)
	}
	if s.UniquePlots != 3 {
		t.Errorf("unique plots = %d, want 3", s.UniquePlots)
	}
	if len(s.Years) != 2 || s.Years[0] != 2023 || s.Years[1] != 2024 {
		t.Errorf("years = %v, want [2023 2024]", s.Years)
	}
	if len(s.SwVersions) != 2 {
		t.Fatalf("sw versions = %v, want 2 entries", s.SwVersions)
	}
	if s.SwVersions[0].Version != "v1.2.3" || s.SwVersions[0].Visits != 3 {
		t.Errorf("top version = %+v, want v1.2.3 x3", s.SwVersions[0])
	}
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	table := testTable()
	before := table.Rows[0].PlotID

	_ = table.WithDerived()
	_ = table.SortByPlotDate()
	_ = table.FilterPlots("PlotA")

	if table.Rows[0].PlotID != before {
		t.Error("operations mutated the receiver table")
	}
	if table.HasDerived() {
		t.Error("WithDerived mutated the receiver's derived flag")
	}
}
