package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/config"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord(config.GetConfigFile(),
			[]string{"api.base_url", "api.timeout", "output.format", "log.file"},
			map[string]interface{}{
				"api.base_url":  config.GetString("api.base_url"),
				"api.timeout":   config.GetInt("api.timeout"),
				"output.format": config.GetString("output.format"),
				"log.file":      config.GetString("log.file"),
			})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting, e.g. 'config set api.base_url http://search:8787'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return err
		}
		output.PrintSuccess("Saved %s to %s", args[0], config.GetConfigFile())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
