package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"

	"github.com/11bthornton/clustering/pkg/clustering"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "umicluster",
	Short: "Cluster paired barcode and CDR reads",
	Long: `Fold a pair of FASTQ files into barcode-keyed and CDR-keyed count
indices and report every cluster's minority sequences against its majority.`,
	Version:       clustering.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
