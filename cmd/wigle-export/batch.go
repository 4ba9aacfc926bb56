package main

import (
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wigletool/wigle-export/internal/runner"
)

var flagBatchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the detail pipeline for every identifier in a file",
	Long: "Reads identifiers (one per line, # comments allowed) and runs the " +
		"detail fetch + export pipeline for each in order. Failures are " +
		"isolated per identifier; authorization failures abort the batch.",
	Example: `  wigle-export batch --file bssids.txt --csv --kml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := runner.ReadIdentifierFile(flagBatchFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}

		result, err := newRunner(cli).Batch(ctx, ids, url.Values{})
		if err != nil {
			return err
		}
		if result.Failed > 0 {
			// Partial failure: summary already emitted, non-zero exit.
			return fmt.Errorf("%d of %d identifiers failed", result.Failed, result.Processed)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&flagBatchFile, "file", "", "text file with one identifier per line (required)")
	_ = batchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(batchCmd)
}
