package cli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmarlow/fieldscan/internal/meta"
)

func newBandsCmd() *cobra.Command {
	var (
		fields  []string
		maxBand int
		compare bool
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "bands [root]",
		Short: "Extract multispectral band metadata per visit",
		Long:  "Scan a survey archive, read per-band tag fields from each visit's multispectral imagery, and optionally compare band assignments across firmware versions.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBands(cmd.Context(), os.Stdout, getRoot(args),
				getBandFields(fields), getMaxBand(maxBand), compare, compact)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "tag fields to extract per band (default FileName,BandName,CentralWavelength,WavelengthFWHM)")
	cmd.Flags().IntVar(&maxBand, "max-band", 0, "highest band suffix to search for (default 11)")
	cmd.Flags().BoolVar(&compare, "compare", false, "summarize band assignments by firmware version")
	cmd.Flags().BoolVar(&compact, "compact", false, "pivot assignments into a firmware-by-band table")

	return cmd
}

func runBands(ctx context.Context, w io.Writer, root string, fields []string, maxBand int, compare, compact bool) error {
	table, err := scanTable(root)
	if err != nil {
		return err
	}
	if table.Empty() {
		printNoVisits(w)
		return nil
	}

	records := newExtractor().AnalyzeAcrossVisits(ctx, table, fields, maxBand)

	switch {
	case compact:
		grid := meta.CompactTable(meta.CompareAcrossFirmware(records))
		if isJSON() {
			return printJSON(w, gridJSON(grid))
		}
		return printGrid(w, grid)
	case compare:
		assignments := meta.CompareAcrossFirmware(records)
		if isJSON() {
			return printJSON(w, assignments)
		}
		return printAssignments(w, assignments)
	}

	if isJSON() {
		return printJSON(w, records)
	}
	return printBandRecords(w, records)
}

// gridJSON renders the pivot with string band keys, since JSON objects
// cannot key on integers directly in a readable way.
func gridJSON(grid meta.AssignmentGrid) []map[string]string {
	out := make([]map[string]string, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		m := map[string]string{"software": row.Software}
		for idx, cell := range row.Cells {
			m["band"+strconv.Itoa(idx)] = cell
		}
		out = append(out, m)
	}
	return out
}
