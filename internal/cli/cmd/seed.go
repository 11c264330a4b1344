package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.SeedDocuments()
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		if res.Count > 0 {
			output.PrintInfo("%s (%d documents)", res.Message, res.Count)
			return nil
		}
		output.PrintSuccess("Seeded %d documents into %s", res.DocumentsCreated, res.IndexName)
		return nil
	},
}

var seedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every sample document",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.ClearDocuments()
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		output.PrintSuccess("Deleted %d documents from %s", res.Deleted, res.IndexName)
		return nil
	},
}

func init() {
	seedCmd.AddCommand(seedClearCmd)
}
