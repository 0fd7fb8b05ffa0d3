// Package meta locates survey imagery on disk and extracts camera and
// firmware metadata from it via the external tag reader.
package meta

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jmarlow/fieldscan/internal/exiftool"
	"github.com/jmarlow/fieldscan/internal/visit"
)

// Default field lists. Callers may pass their own; these are the documented
// defaults used by the CLI.
var (
	// DefaultFields is requested by single-file enrichment.
	DefaultFields = []string{"Software", "SwVersion"}

	// DefaultBandFields is requested by per-band extraction.
	DefaultBandFields = []string{"FileName", "BandName", "CentralWavelength", "WavelengthFWHM"}
)

// SourceField is the extra column recording which file metadata came from.
const SourceField = "metadata_source"

// cogSuffix marks derived compressed variants that must never be treated
// as source imagery.
const cogSuffix = "_cog.tif"

// probeSubdirs are the conventional imagery locations checked, in priority
// order, when a visit directory holds no images at its top level.
var probeSubdirs = []string{"imagery", "rgb", "multispec", "level0_raw"}

// recursiveCap bounds the fallback recursive search.
const recursiveCap = 3

// Extractor reads metadata for visit directories using an external tag
// reader. Failures never propagate: a visit that cannot be read yields
// absent fields and a warning.
type Extractor struct {
	tool *exiftool.Runner
}

// NewExtractor creates an extractor backed by the given tag reader.
func NewExtractor(tool *exiftool.Runner) *Extractor {
	return &Extractor{tool: tool}
}

// ExtractOne finds a representative image under dir and returns the
// requested tag fields read from it, plus SourceField naming the file used.
// A nil value means the field was absent. Finding no image at all is not an
// error: every field comes back nil.
func (e *Extractor) ExtractOne(ctx context.Context, dir string, fields []string) map[string]*string {
	out := absentFields(fields)

	files := findSourceImages(dir)
	if len(files) == 0 {
		return out
	}

	// Only the first image is read; one file is enough for per-visit tags.
	first := files[0]
	rec, err := e.tool.ExtractFile(ctx, first)
	if err != nil {
		slog.Warn("could not extract metadata", "file", first, "error", err)
		return out
	}

	for _, f := range fields {
		if v, ok := rec.String(f); ok {
			val := v
			out[f] = &val
		}
	}
	src := filepath.Base(first)
	out[SourceField] = &src
	return out
}

// EnrichTable runs ExtractOne for every row and returns the table with the
// requested fields attached as extra columns. A failing row degrades to
// absent values; the rest of the table is unaffected.
func (e *Extractor) EnrichTable(ctx context.Context, t visit.Table, fields []string) visit.Table {
	meta := make([]map[string]*string, 0, t.Len())
	for _, row := range t.Rows {
		meta = append(meta, e.ExtractOne(ctx, row.FullPath, fields))
	}

	cols := append(append([]string{}, fields...), SourceField)
	out := t.AttachMeta(cols, meta)

	for _, f := range fields {
		found := 0
		for _, m := range meta {
			if m[f] != nil {
				found++
			}
		}
		slog.Info("metadata field extracted", "field", f, "found", found, "visits", t.Len())
	}
	return out
}

// absentFields maps every requested field to nil.
func absentFields(fields []string) map[string]*string {
	out := make(map[string]*string, len(fields))
	for _, f := range fields {
		out[f] = nil
	}
	return out
}

// findSourceImages locates candidate source images for a visit directory:
// first the directory itself, then the conventional imagery subdirectories,
// and finally a capped recursive search. Derived "_cog" variants are
// excluded throughout.
func findSourceImages(dir string) []string {
	files := listTIFs(dir)

	if len(files) == 0 {
		for _, sub := range probeSubdirs {
			files = append(files, listTIFs(filepath.Join(dir, sub))...)
		}
	}

	if len(files) == 0 {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			name := d.Name()
			if strings.HasSuffix(name, ".tif") && !strings.HasSuffix(name, cogSuffix) {
				files = append(files, path)
				if len(files) >= recursiveCap {
					return fs.SkipAll
				}
			}
			return nil
		})
	}

	return files
}

// listTIFs returns the non-cog .tif files directly inside dir.
func listTIFs(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tif"))
	if err != nil {
		return nil
	}
	var files []string
	for _, m := range matches {
		if !strings.HasSuffix(m, cogSuffix) {
			files = append(files, m)
		}
	}
	return files
}
