package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/systemshift/minddump/internal/server/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of minddump-server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "minddump-server %s (api %s)\n", buildVersion(), api.Version)
	},
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
