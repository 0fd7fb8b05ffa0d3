package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jmarlow/fieldscan/internal/meta"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash(nil); got != "-" {
		t.Errorf("orDash(nil) = %q", got)
	}
	v := "x"
	if got := orDash(&v); got != "x" {
		t.Errorf("orDash(&x) = %q", got)
	}
}

func TestPrintGrid(t *testing.T) {
	wl := "660"
	grid := meta.CompactTable([]meta.BandAssignment{
		{Software: "v1", BandIndex: 0, BandName: "Red", Count: 2, CentralWavelength: &wl},
		{Software: "v1", BandIndex: 3, BandName: "NIR", Count: 2},
	})

	var buf bytes.Buffer
	if err := printGrid(&buf, grid); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "BAND0") || !strings.Contains(out, "BAND3") {
		t.Errorf("missing band columns:\n%s", out)
	}
	if !strings.Contains(out, "Red (660 nm)") {
		t.Errorf("missing formatted cell:\n%s", out)
	}
}

func TestPrintGridEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printGrid(&buf, meta.AssignmentGrid{}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "No band assignments found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintAssignments(t *testing.T) {
	var buf bytes.Buffer
	err := printAssignments(&buf, []meta.BandAssignment{
		{Software: "v1", BandIndex: 0, BandName: "Red", Count: 2},
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "SOFTWARE") || !strings.Contains(out, "Red") {
		t.Errorf("output:\n%s", out)
	}
	// Absent wavelength renders as a dash.
	if !strings.Contains(out, "-") {
		t.Errorf("missing dash for absent value:\n%s", out)
	}
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		as      string
		want    string
		wantErr bool
	}{
		{"csv by extension", "visits.csv", "", "csv", false},
		{"json by extension", "visits.json", "", "json", false},
		{"sqlite by extension", "visits.db", "", "sqlite", false},
		{"sqlite3 extension", "visits.sqlite3", "", "sqlite", false},
		{"explicit overrides extension", "visits.dat", "csv", "csv", false},
		{"unknown extension", "visits.dat", "", "", true},
		{"unsupported format", "visits.csv", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportFormat(tt.out, tt.as)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %q, want %q", got, tt.want)
			}
		})
	}
}
