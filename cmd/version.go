package cmd

import (
	"fmt"

	"github.com/nearblocks/txns-action/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "txns-action %s (%s)\n", version.GetVersion(), version.GetCommit())
	},
}
