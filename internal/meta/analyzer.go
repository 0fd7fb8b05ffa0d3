package meta

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jmarlow/fieldscan/internal/visit"
)

// VisitBandRecord is the per-visit output of AnalyzeAcrossVisits: the visit
// identity, the firmware pair lifted from one of its bands, and the band
// metadata itself. A visit with no readable bands still gets a record, with
// nil Software and an empty Bands map.
type VisitBandRecord struct {
	PlotID    string           `json:"plot_id"`
	VisitDate time.Time        `json:"visit_date"`
	FullPath  string           `json:"full_path"`
	Software  *string          `json:"software"`
	SwVersion *string          `json:"sw_version"`
	Bands     map[int]BandMeta `json:"bands"`
}

// AnalyzeAcrossVisits runs band extraction for every row of the table, in
// row order, and returns one record per row. Row count is preserved 1:1.
func (e *Extractor) AnalyzeAcrossVisits(ctx context.Context, t visit.Table, fields []string, maxBand int) []VisitBandRecord {
	records := make([]VisitBandRecord, 0, t.Len())
	for i, row := range t.Rows {
		slog.Debug("extracting bands",
			"plot", row.PlotID,
			"date", row.VisitDate.Format("20060102"),
			"progress", fmt.Sprintf("%d/%d", i+1, t.Len()))

		bands := e.ExtractBands(ctx, row.FullPath, fields, maxBand)
		rec := VisitBandRecord{
			PlotID:    row.PlotID,
			VisitDate: row.VisitDate,
			FullPath:  row.FullPath,
			Bands:     bands,
		}
		// The firmware pair is the same across a rig's bands; any band will do.
		for _, bm := range bands {
			rec.Software = bm.Fields["Software"]
			rec.SwVersion = bm.Fields["SwVersion"]
			break
		}
		records = append(records, rec)
	}
	return records
}

// BandAssignment summarizes how one firmware version labels one hardware
// band: the name observed, how often, and the modal wavelength and FWHM
// among visits carrying that (firmware, name) pair.
type BandAssignment struct {
	Software          string  `json:"software"`
	BandIndex         int     `json:"band_index"`
	BandName          string  `json:"band_name"`
	Count             int     `json:"count"`
	CentralWavelength *string `json:"central_wavelength"`
	WavelengthFWHM    *string `json:"wavelength_fwhm"`
}

// CompareAcrossFirmware tallies band-name assignments per firmware version
// and band index. Without any firmware information in the input it logs an
// error and returns an empty result. Output is sorted by (software, band
// index); within a band, names keep first-observed order.
func CompareAcrossFirmware(records []VisitBandRecord) []BandAssignment {
	versions := distinctSoftware(records)
	if len(versions) == 0 {
		slog.Error("no Software column in band records; cannot compare firmware versions")
		return nil
	}

	indexes := distinctBandIndexes(records)

	var out []BandAssignment
	for _, ver := range versions {
		for _, idx := range indexes {
			// Frequency of each band name for this (firmware, index).
			counts := make(map[string]int)
			var names []string
			for _, rec := range records {
				if rec.Software == nil || *rec.Software != ver {
					continue
				}
				bm, ok := rec.Bands[idx]
				if !ok {
					continue
				}
				name := bm.Fields["BandName"]
				if name == nil {
					continue
				}
				if counts[*name] == 0 {
					names = append(names, *name)
				}
				counts[*name]++
			}

			for _, name := range names {
				var wavelengths, fwhms []string
				for _, rec := range records {
					if rec.Software == nil || *rec.Software != ver {
						continue
					}
					bm, ok := rec.Bands[idx]
					if !ok || bm.Fields["BandName"] == nil || *bm.Fields["BandName"] != name {
						continue
					}
					if v := bm.Fields["CentralWavelength"]; v != nil {
						wavelengths = append(wavelengths, *v)
					}
					if v := bm.Fields["WavelengthFWHM"]; v != nil {
						fwhms = append(fwhms, *v)
					}
				}
				out = append(out, BandAssignment{
					Software:          ver,
					BandIndex:         idx,
					BandName:          name,
					Count:             counts[name],
					CentralWavelength: mode(wavelengths),
					WavelengthFWHM:    mode(fwhms),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Software != out[j].Software {
			return out[i].Software < out[j].Software
		}
		return out[i].BandIndex < out[j].BandIndex
	})
	return out
}

// AssignmentGrid is the compact pivot of band assignments: one row per
// firmware version, one column per band index.
type AssignmentGrid struct {
	BandIndexes []int
	Rows        []GridRow
}

// GridRow is one firmware version's band-assignment cells, keyed by band
// index. Unobserved cells are simply missing.
type GridRow struct {
	Software string
	Cells    map[int]string
}

// CompactTable pivots assignments into firmware rows by band-index columns.
// When a (firmware, index) pair has several assignments the first one wins.
// Cells read "Name (660 nm)", or just the name when no wavelength was seen.
func CompactTable(assignments []BandAssignment) AssignmentGrid {
	var grid AssignmentGrid
	if len(assignments) == 0 {
		return grid
	}

	idxSeen := make(map[int]bool)
	rowByVer := make(map[string]*GridRow)
	var verOrder []string

	for _, a := range assignments {
		if !idxSeen[a.BandIndex] {
			idxSeen[a.BandIndex] = true
			grid.BandIndexes = append(grid.BandIndexes, a.BandIndex)
		}
		row, ok := rowByVer[a.Software]
		if !ok {
			row = &GridRow{Software: a.Software, Cells: make(map[int]string)}
			rowByVer[a.Software] = row
			verOrder = append(verOrder, a.Software)
		}
		if _, taken := row.Cells[a.BandIndex]; taken {
			continue
		}
		cell := a.BandName
		if a.CentralWavelength != nil {
			cell = fmt.Sprintf("%s (%s nm)", a.BandName, *a.CentralWavelength)
		}
		row.Cells[a.BandIndex] = cell
	}

	sort.Ints(grid.BandIndexes)
	sort.Strings(verOrder)
	for _, ver := range verOrder {
		grid.Rows = append(grid.Rows, *rowByVer[ver])
	}
	return grid
}

// distinctSoftware returns the firmware versions present, in first-seen order.
func distinctSoftware(records []VisitBandRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.Software == nil || seen[*rec.Software] {
			continue
		}
		seen[*rec.Software] = true
		out = append(out, *rec.Software)
	}
	return out
}

// distinctBandIndexes returns every band index observed, ascending.
func distinctBandIndexes(records []VisitBandRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, rec := range records {
		for idx := range rec.Bands {
			if !seen[idx] {
				seen[idx] = true
				out = append(out, idx)
			}
		}
	}
	sort.Ints(out)
	return out
}

// mode returns the most frequent value, or nil for an empty input. Ties
// resolve to the value seen first; callers must not rely on tie order.
func mode(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return &best
}
