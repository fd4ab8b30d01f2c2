package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/11bthornton/clustering/internal/config"
	"github.com/11bthornton/clustering/pkg/clustering"
)

// clusterCmd folds a FASTQ pair and prints the report of the chosen mode.
var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Fold a FASTQ pair and print a cluster report",
	Long: `Fold a FASTQ pair and print a cluster report.

Mode "umi" groups CDRs by barcode and diffs each minority CDR against the
barcode's majority, in nucleotides and in protein, followed by a histogram
of minority counts. Mode "cdr" groups barcodes by CDR and explains where
else each minority barcode was seen.

Modes are named after the key of the reported index. Older releases used
the opposite names: their default "-p umi" printed what is now "-p cdr",
which is still the default.`,
	Example: `  umicluster cluster -u forward.fastq -c reverse.fastq
  umicluster cluster -u fwd.fq.gz -c rev.fq.gz -p umi -o json -j 8 --threshold 2`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

// summaryCmd folds a FASTQ pair and prints statistics of both indices.
var summaryCmd = &cobra.Command{
	Use:     "summary",
	Short:   "Fold a FASTQ pair and print index statistics",
	Example: "  umicluster summary -u forward.fastq -c reverse.fastq --progress",
	Args:    cobra.NoArgs,
	RunE:    runSummary,
}

func init() {
	config.AddInputFlags(clusterCmd.Flags())
	config.AddReportFlags(clusterCmd.Flags())
	config.AddInputFlags(summaryCmd.Flags())

	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.New(), cmd.Flags())
	if err != nil {
		return err
	}

	res, err := clustering.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return clustering.WriteReport(cmd.Context(), cmd.OutOrStdout(), res, cfg)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.New(), cmd.Flags())
	if err != nil {
		return err
	}

	res, err := clustering.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	s := clustering.Summarize(res)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pairs: %d (recorded %d, admitted %d, malformed %d, truncated %t)\n",
		s.Pairs, s.Recorded, s.Admitted, s.Malformed, s.Truncated)
	fmt.Fprintf(out, "\nBarcode -> CDR\n%s\n", s.UMIToCDR)
	fmt.Fprintf(out, "\nCDR -> barcode\n%s\n", s.CDRToUMI)
	return nil
}
