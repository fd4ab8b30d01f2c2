package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/11bthornton/clustering/internal/config"
	"github.com/11bthornton/clustering/pkg/clustering"
)

// affinityCmd sweeps the barcode index against a reference barcode list.
var affinityCmd = &cobra.Command{
	Use:   "affinity",
	Short: "Sweep cluster thresholds against reference barcodes",
	Long: `Fold a FASTQ pair, then drop barcode clusters at increasing thresholds
and count how many reference barcodes no longer have a cluster at each step.

The reference is a CSV with a header row and the barcode in its second
column.`,
	Example: "  umicluster affinity -u forward.fastq -c reverse.fastq --affinity-csv barcodes.csv --affinity-max-threshold 50",
	Args:    cobra.NoArgs,
	RunE:    runAffinity,
}

func init() {
	config.AddInputFlags(affinityCmd.Flags())
	config.AddAffinityFlags(affinityCmd.Flags())
	affinityCmd.Flags().StringP(config.KeyFormat, "o", config.Default().Format, `output format: "text" or "json"`)

	rootCmd.AddCommand(affinityCmd)
}

func runAffinity(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.New(), cmd.Flags())
	if err != nil {
		return err
	}

	res, err := clustering.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	points, err := clustering.Sweep(cmd.Context(), res, cfg)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "threshold\tmissing\tclusters")
	for _, p := range points {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", p.Threshold, p.Missing, p.Clusters)
	}
	return tw.Flush()
}
