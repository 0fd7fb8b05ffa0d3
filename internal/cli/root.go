// Package cli defines the cobra command tree for fieldscan.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmarlow/fieldscan/internal/exiftool"
	"github.com/jmarlow/fieldscan/internal/logging"
	"github.com/jmarlow/fieldscan/internal/meta"
)

var (
	flagFormat string
	flagDev    bool
	flagTool   string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldscan",
		Short:         "Inventory field-survey capture directories",
		Long:          "Scan a directory tree of field-survey captures (PlotID/YYYYMMDD) into a visit table, enrich visits with camera metadata read via an external tag reader, and compare multispectral band assignments across firmware versions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(isDev())
		},
		// Bare invocation behaves like "scan": preview the visit table.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(os.Stdout, getRoot(args), scanOptions{})
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVar(&flagDev, "dev", false, "human-readable debug logging")
	root.PersistentFlags().StringVar(&flagTool, "tool", "", "tag reader binary (default: exiftool, or tool from config)")

	root.AddCommand(
		newScanCmd(),
		newEnrichCmd(),
		newBandsCmd(),
		newExportCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)

	return root
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// isDev returns true when dev logging is requested by flag or env.
func isDev() bool {
	return flagDev || os.Getenv("FIELDSCAN_DEV") != ""
}

// newExtractor builds a metadata extractor around the configured tag reader.
func newExtractor() *meta.Extractor {
	return meta.NewExtractor(exiftool.New(getTool()))
}
