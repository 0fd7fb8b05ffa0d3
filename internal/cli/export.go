package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmarlow/fieldscan/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		out    string
		as     string
		enrich bool
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "export [root]",
		Short: "Write the visit table to a file",
		Long:  "Scan a survey archive and write the resulting visit table to a CSV, JSON or SQLite snapshot file. With --enrich, camera metadata columns are extracted first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), getRoot(args), out, as, enrich, getMetaFields(fields))
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (required)")
	cmd.Flags().StringVar(&as, "as", "", "output format: csv, json or sqlite (default: by file extension)")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "attach camera metadata columns before exporting")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "tag fields for --enrich (default Software,SwVersion)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(ctx context.Context, root, out, as string, enrich bool, fields []string) (err error) {
	format, err := exportFormat(out, as)
	if err != nil {
		return err
	}

	table, err := scanTable(root)
	if err != nil {
		return err
	}
	if enrich {
		table = newExtractor().EnrichTable(ctx, table, fields)
	}

	if format == "sqlite" {
		if err := export.WriteSQLite(out, table); err != nil {
			return err
		}
		fmt.Printf("Wrote %d visits to %s\n", table.Len(), out)
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", out, closeErr)
		}
	}()

	switch format {
	case "csv":
		err = export.WriteCSV(f, table)
	case "json":
		err = export.WriteJSON(f, table)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d visits to %s\n", table.Len(), out)
	return nil
}

// exportFormat resolves the output format from --as or the file extension.
func exportFormat(out, as string) (string, error) {
	format := strings.ToLower(as)
	if format == "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		default:
			return "", fmt.Errorf("cannot infer format from %q; use --as csv|json|sqlite", out)
		}
	}
	switch format {
	case "csv", "json", "sqlite":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}
