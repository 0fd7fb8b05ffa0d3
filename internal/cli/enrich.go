package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newEnrichCmd() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "enrich [root]",
		Short: "Scan and attach camera metadata to each visit",
		Long:  "Scan a survey archive and read the requested tag fields from a representative image of each visit, using the external tag reader. Visits without readable imagery get absent values.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd.Context(), os.Stdout, getRoot(args), getMetaFields(fields))
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "tag fields to extract (default Software,SwVersion)")

	return cmd
}

func runEnrich(ctx context.Context, w io.Writer, root string, fields []string) error {
	table, err := scanTable(root)
	if err != nil {
		return err
	}
	if table.Empty() {
		printNoVisits(w)
		return nil
	}

	table = newExtractor().EnrichTable(ctx, table, fields)

	if isJSON() {
		return printJSON(w, table.Rows)
	}
	if err := printTablePreview(w, table); err != nil {
		return err
	}
	printSummary(w, table.Summarize())
	return nil
}
