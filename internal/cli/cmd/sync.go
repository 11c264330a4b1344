package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var syncDirect bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild and inspect the city index",
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Rebuild the city index from Postgres",
	Long:  "Drops and recreates the city index, then bulk-loads every city. --direct uses the raw HTTP engine.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.SyncCities(syncDirect)
		if err != nil {
			return err
		}

		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		if res.Shared {
			output.PrintInfo("Joined a rebuild that was already running")
		}
		if res.Partial {
			output.PrintWarning("%s", res.Message)
			for _, e := range res.Errors {
				output.PrintError("%s", e)
			}
			return nil
		}
		output.PrintSuccess("%s", res.Message)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the city index exists and how large it is",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.GetSyncStatus(syncDirect)
		if err != nil {
			return err
		}
		return output.PrintRecord(status.Message,
			[]string{"indexed", "count", "size_bytes", "refresh_ms", "mapping_version"},
			map[string]interface{}{
				"indexed":         status.Indexed,
				"count":           status.Count,
				"size_bytes":      status.IndexSize,
				"refresh_ms":      status.LastModified,
				"mapping_version": status.Version,
			})
	},
}

func init() {
	syncCmd.PersistentFlags().BoolVar(&syncDirect, "direct", false, "Use the direct HTTP engine")
	syncCmd.AddCommand(syncRunCmd, syncStatusCmd)
}
