package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/client"
	"github.com/zfogg/citysearch/internal/cli/config"
	"github.com/zfogg/citysearch/internal/cli/logger"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "citysearch",
	Short: "CitySearch CLI - city typeahead and document search",
	Long: `citysearch talks to the CitySearch API: search cities in Postgres or
Elasticsearch, rebuild the city index, manage documents and check the
health of every backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (use text, json or table)", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		if serverURL != "" {
			config.Set("api.base_url", serverURL)
		}

		client.Init()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/citysearch/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides api.base_url)")

	rootCmd.AddCommand(citiesCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
