package cmd

import (
	"fmt"
	"os"

	"github.com/lugondev/go-carbon-dex/internal/datasource/replay"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/output"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	replayIn      string
	replayErrors  bool
	replayQuiet   bool
	replaySchemas []string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Decode a JSON-lines file of account snapshots",
	Long: `Decode every snapshot of a JSON-lines file and print a summary.

Each line is an object with "owner" and "data" and optional "address",
"encoding" (base64, base58 or hex), "slot" and "lamports". Lines that are
not valid are reported and skipped. Snapshots are decoded in batches of
decoder.batch_size and printed in file order.`,
	Example: `  carbon-dex replay --in snapshots.jsonl --workers 8 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, invalid, err := replay.ReadFile(replayIn)
		if err != nil {
			return err
		}
		for _, lineErr := range invalid {
			logger.Warn("skipping invalid line", "line", replay.LineNumber(lineErr), "error", lineErr.Error())
		}

		schemas, err := parseSchemas(replaySchemas)
		if err != nil {
			return err
		}
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		printer, err := newPrinter(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		summary, err := output.Replay(cmd.Context(), d, printer, updates, output.ReplayOptions{
			Workers:     cfg.Decoder.Workers,
			BatchSize:   cfg.Decoder.BatchSize,
			PrintErrors: replayErrors,
			Quiet:       replayQuiet,
			Schemas:     schemas,
		})
		if err != nil {
			return err
		}

		summary.Invalid = len(invalid)
		logger.Info("replay finished", "total", summary.Total, "decoded", summary.Decoded, "failed", summary.Failed)
		return printer.PrintSummary(summary)
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayIn, "in", "i", "", "JSON-lines input file (- for stdin)")
	replayCmd.Flags().Int("workers", 4, "number of concurrent decode workers")
	replayCmd.Flags().BoolVar(&replayErrors, "errors", true, "print failed decodes")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "print only the summary")
	replayCmd.Flags().StringSliceVar(&replaySchemas, "schema", nil, "only print these schemas (see the schemas command)")
	replayCmd.Flags().Int("batch-size", 256, "number of snapshots decoded per batch")

	if err := replayCmd.MarkFlagRequired("in"); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking flag required: %v\n", err)
	}
	for key, name := range map[string]string{
		"decoder.workers":    "workers",
		"decoder.batch_size": "batch-size",
	} {
		if err := viper.BindPFlag(key, replayCmd.Flags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
		}
	}

	rootCmd.AddCommand(replayCmd)
}

func parseSchemas(names []string) ([]layout.SchemaID, error) {
	ids := make([]layout.SchemaID, 0, len(names))
	for _, name := range names {
		id, ok := layout.ParseSchema(name)
		if !ok {
			return nil, cerrors.InvalidInput("unknown schema %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
