package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Dump a single image's EXIF tags without the external tool",
		Long:  "Read and print the EXIF tags of one image directly, without invoking the external tag reader. Useful for telling a broken tool apart from an unreadable file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(os.Stdout, args[0])
		},
	}
}

func runInspect(w io.Writer, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	x, err := exif.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding EXIF from %s: %w", path, err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tVALUE")
	if err := x.Walk(tagPrinter{tw}); err != nil {
		return fmt.Errorf("walking EXIF tags: %w", err)
	}
	return tw.Flush()
}

// tagPrinter writes each EXIF field as one table row.
type tagPrinter struct {
	w io.Writer
}

func (p tagPrinter) Walk(name exif.FieldName, tag *tiff.Tag) error {
	fmt.Fprintf(p.w, "%s\t%s\n", name, tag.String())
	return nil
}
