package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of Elasticsearch, Postgres and the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.GetStatus()
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", status)
		}

		es := componentLine(status.Elasticsearch)
		if info := status.Elasticsearch.Info; info != nil {
			es += fmt.Sprintf(" (%s, %s)", info.ClusterName, info.Version.Number)
		}
		cache := "disabled"
		if status.Cache.Enabled != nil && *status.Cache.Enabled {
			cache = componentLine(status.Cache)
		}

		return output.PrintRecord("CitySearch "+status.API.Status,
			[]string{"elasticsearch", "database", "cache", "checked_at"},
			map[string]interface{}{
				"elasticsearch": es,
				"database":      componentLine(status.Database),
				"cache":         cache,
				"checked_at":    status.API.Timestamp,
			})
	},
}

var statusESCmd = &cobra.Command{
	Use:   "es",
	Short: "Ping Elasticsearch through the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.TestElasticsearch()
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		output.PrintSuccess("%s: %s %s (lucene %s)", res.Message, res.Cluster.Name, res.Cluster.Version, res.Cluster.LuceneVersion)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API process is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.Health()
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		output.PrintSuccess("API %v", res["status"])
		return nil
	},
}

func componentLine(c api.ComponentStatus) string {
	if c.Connected {
		return color.GreenString("connected")
	}
	if c.Error != "" {
		return color.RedString("down: %s", c.Error)
	}
	return color.RedString("down")
}

func init() {
	statusCmd.AddCommand(statusESCmd, healthCmd)
}
