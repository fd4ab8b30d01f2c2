package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/11bthornton/clustering/pkg/clustering"
)

// versionCmd prints the library description and version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), clustering.Info())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
