package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmarlow/fieldscan/internal/exiftool"
	"github.com/jmarlow/fieldscan/internal/visit"
)

// writeStubTool writes an executable shell script standing in for the tag
// reader: it answers -ver, records its arguments to argsFile, and prints
// the given JSON body.
func writeStubTool(t *testing.T, jsonBody string) (tool, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"-ver\" ]; then echo 12.76; exit 0; fi\n" +
		"printf '%s\\n' \"$@\" > " + argsFile + "\n" +
		"cat <<'EOF'\n" + jsonBody + "\nEOF\n"
	tool = filepath.Join(dir, "stubtool")
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatalf("writing stub tool: %v", err)
	}
	return tool, argsFile
}

// failingStubTool always exits non-zero.
func failingStubTool(t *testing.T) string {
	t.Helper()
	tool := filepath.Join(t.TempDir(), "stubtool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("writing stub tool: %v", err)
	}
	return tool
}

// touch creates empty files under dir, making parent directories as needed.
func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
}

func TestFindSourceImages(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.tif", "a_cog.tif")
		files := findSourceImages(dir)
		if len(files) != 1 || filepath.Base(files[0]) != "a.tif" {
			t.Errorf("files = %v, want just a.tif", files)
		}
	})

	t.Run("conventional subdirs accumulate in priority order", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "rgb/b.tif", "imagery/a.tif", "multispec/c_cog.tif")
		files := findSourceImages(dir)
		if len(files) != 2 {
			t.Fatalf("files = %v, want 2", files)
		}
		if filepath.Base(files[0]) != "a.tif" || filepath.Base(files[1]) != "b.tif" {
			t.Errorf("files = %v, want imagery before rgb", files)
		}
	})

	t.Run("recursive fallback capped at three", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "deep/nest/a.tif", "deep/nest/b.tif", "deep/nest/c.tif", "deep/nest/d.tif")
		files := findSourceImages(dir)
		if len(files) != 3 {
			t.Errorf("got %d files, want cap of 3", len(files))
		}
	})

	t.Run("cog-only tree yields nothing", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "img_cog.tif", "imagery/img_cog.tif", "deep/nest/img_cog.tif")
		if files := findSourceImages(dir); len(files) != 0 {
			t.Errorf("files = %v, want none", files)
		}
	})
}

func TestExtractOneNoImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "img_cog.tif")

	tool, _ := writeStubTool(t, `[]`)
	e := NewExtractor(exiftool.New(tool))

	fields := []string{"Software", "SwVersion"}
	got := e.ExtractOne(context.Background(), dir, fields)

	for _, f := range fields {
		v, ok := got[f]
		if !ok {
			t.Errorf("field %s missing from result", f)
		}
		if v != nil {
			t.Errorf("field %s = %q, want absent", f, *v)
		}
	}
	if _, ok := got[SourceField]; ok {
		t.Error("metadata_source should not be set when no image was found")
	}
}

func TestExtractOneSuccess(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "capture.tif")

	tool, _ := writeStubTool(t, `[{"SourceFile": "capture.tif", "Software": "v7.0.1", "Extra": "ignored"}]`)
	e := NewExtractor(exiftool.New(tool))

	got := e.ExtractOne(context.Background(), dir, []string{"Software", "SwVersion"})

	if got["Software"] == nil || *got["Software"] != "v7.0.1" {
		t.Errorf("Software = %v, want v7.0.1", got["Software"])
	}
	if got["SwVersion"] != nil {
		t.Errorf("SwVersion = %q, want absent", *got["SwVersion"])
	}
	if src := got[SourceField]; src == nil || *src != "capture.tif" {
		t.Errorf("metadata_source = %v, want capture.tif", src)
	}
	if _, ok := got["Extra"]; ok {
		t.Error("unrequested field leaked into result")
	}
}

func TestExtractOneToolFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "capture.tif")

	e := NewExtractor(exiftool.New(failingStubTool(t)))
	got := e.ExtractOne(context.Background(), dir, []string{"Software"})

	if got["Software"] != nil {
		t.Errorf("Software = %q, want absent on tool failure", *got["Software"])
	}
}

func TestEnrichTable(t *testing.T) {
	root := t.TempDir()
	withImage := filepath.Join(root, "PlotA", "20230101")
	withoutImage := filepath.Join(root, "PlotB", "20230101")
	touch(t, withImage, "capture.tif")
	if err := os.MkdirAll(withoutImage, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tool, _ := writeStubTool(t, `[{"SourceFile": "capture.tif", "SwVersion": "v1"}]`)
	e := NewExtractor(exiftool.New(tool))

	table := visit.NewTable([]visit.Visit{
		{PlotID: "PlotA", FullPath: withImage},
		{PlotID: "PlotB", FullPath: withoutImage},
	})

	got := e.EnrichTable(context.Background(), table, []string{"SwVersion"})

	if got.Len() != 2 {
		t.Fatalf("row count changed: %d", got.Len())
	}
	if v := got.Rows[0].Meta["SwVersion"]; v == nil || *v != "v1" {
		t.Errorf("row 0 SwVersion = %v, want v1", v)
	}
	if v := got.Rows[1].Meta["SwVersion"]; v != nil {
		t.Errorf("row 1 SwVersion = %q, want absent", *v)
	}
	if !containsField(got.MetaFields(), SourceField) {
		t.Errorf("meta fields = %v, missing %s", got.MetaFields(), SourceField)
	}
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
