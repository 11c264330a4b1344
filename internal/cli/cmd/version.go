package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/output"
)

// Set at build time with -ldflags "-X .../internal/cli/cmd.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Writer, "citysearch %s\n", Version)
	},
}
