package meta

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBand is the highest band suffix looked for in the
// one-file-per-band naming convention.
const DefaultMaxBand = 11

// rigIndexTag is the tag keying a record to its hardware channel. Records
// without it cannot be attributed to a band and are dropped.
const rigIndexTag = "RigCameraIndex"

// bandDirCandidates lists where multispectral captures conventionally live,
// relative to a visit directory, in priority order. The first existing
// directory wins.
var bandDirCandidates = []string{
	filepath.Join("imagery", "multispec", "level0_raw"),
	filepath.Join("imagery", "multispec"),
	filepath.Join("multispec", "level0_raw"),
	"multispec",
	"",
}

// walkFileCap bounds the fallback walk when no band-pattern files exist.
const walkFileCap = 11

// BandMeta is the metadata read for one hardware band.
type BandMeta struct {
	Filename string             `json:"filename"`
	Fields   map[string]*string `json:"fields"`
}

// ExtractBands locates one image per hardware band under dir, reads all of
// them in a single batch tool call, and returns metadata keyed by the rig
// camera index. Indices need not be contiguous or start at zero. On any
// failure the result is an empty map; this call never partially succeeds.
// Duplicate indices resolve last-write-wins in tool output order.
func (e *Extractor) ExtractBands(ctx context.Context, dir string, fields []string, maxBand int) map[int]BandMeta {
	if maxBand <= 0 {
		maxBand = DefaultMaxBand
	}

	bandDir, ok := firstExistingBandDir(dir)
	if !ok {
		return map[int]BandMeta{}
	}
	slog.Debug("searching for band images", "dir", bandDir)

	files := findBandFiles(bandDir, maxBand)
	if len(files) == 0 {
		slog.Debug("no band-pattern files, falling back to walk", "dir", bandDir)
		files = walkTIFs(bandDir, 2, walkFileCap)
	}
	if len(files) == 0 {
		slog.Debug("no band images found", "dir", bandDir)
		return map[int]BandMeta{}
	}

	records, err := e.tool.ExtractBatch(ctx, files)
	if err != nil {
		e.diagnoseBatchFailure(ctx, files[0], err)
		return map[int]BandMeta{}
	}

	bands := make(map[int]BandMeta, len(records))
	for _, rec := range records {
		idx, ok := rec.Int(rigIndexTag)
		if !ok {
			continue
		}
		bm := BandMeta{
			Filename: rec.SourceBase(),
			Fields:   make(map[string]*string, len(fields)),
		}
		for _, f := range fields {
			if v, ok := rec.String(f); ok {
				val := v
				bm.Fields[f] = &val
			} else {
				bm.Fields[f] = nil
			}
		}
		bands[idx] = bm
	}
	return bands
}

// diagnoseBatchFailure distinguishes "tool not usable" from "file not
// readable" after a failed batch call, logging either way.
func (e *Extractor) diagnoseBatchFailure(ctx context.Context, sample string, batchErr error) {
	if _, err := e.tool.ExtractFile(ctx, sample); err == nil {
		slog.Warn("band batch extraction failed but single file reads fine",
			"file", sample, "error", batchErr)
		return
	}
	if ver, err := e.tool.Version(ctx); err != nil {
		slog.Warn("tag reader is not usable", "error", err, "batch_error", batchErr)
	} else {
		slog.Warn("tag reader cannot read band imagery",
			"version", ver, "file", sample, "batch_error", batchErr)
	}
}

// firstExistingBandDir returns the first candidate band directory that
// exists under dir.
func firstExistingBandDir(dir string) (string, bool) {
	for _, rel := range bandDirCandidates {
		p := filepath.Join(dir, rel)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// findBandFiles collects files matching the *_{i}.tif band naming
// convention for i in 1..maxBand, in ascending band order.
func findBandFiles(dir string, maxBand int) []string {
	var files []string
	for i := 1; i <= maxBand; i++ {
		matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("*_%d.tif", i)))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	return files
}

// walkTIFs collects up to limit non-cog .tif files (case-insensitive) from
// directories at most maxDepth levels below dir, in walk order.
func walkTIFs(dir string, maxDepth, limit int) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		depth := 0
		if rel != "." {
			depth = len(strings.Split(rel, string(filepath.Separator)))
		}
		if d.IsDir() {
			if depth > maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".tif") && !strings.HasSuffix(name, cogSuffix) {
			files = append(files, path)
			if len(files) >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	return files
}
