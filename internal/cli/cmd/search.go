package cmd

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var (
	searchTags     []string
	searchFromDate string
	searchToDate   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text document search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.SearchRequest{
			Query: strings.Join(args, " "),
			Index: docIndex,
			Size:  docSize,
			From:  docFrom,
		}
		if len(searchTags) > 0 || searchFromDate != "" || searchToDate != "" {
			req.Filters = &api.SearchFilters{Tags: searchTags}
			if searchFromDate != "" || searchToDate != "" {
				req.Filters.DateRange = &api.DateRange{From: searchFromDate, To: searchToDate}
			}
		}

		res, err := api.SearchDocuments(req)
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}

		for _, hit := range res.Hits {
			color.New(color.Bold).Fprintf(output.Writer, "%s", hit.Title)
			color.New(color.Faint).Fprintf(output.Writer, "  [%s] score %.2f\n", hit.ID, hit.Score)
			for _, fragment := range hit.Highlight["content"] {
				output.PrintInfo("  %s", emphasize(fragment))
			}
		}
		output.PrintInfo("%d hits (%dms)", res.Total, res.Took)
		return nil
	},
}

// emphasize swaps the server's <em> highlight tags for terminal colour
func emphasize(fragment string) string {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	var b strings.Builder
	for {
		start := strings.Index(fragment, "<em>")
		if start < 0 {
			break
		}
		end := strings.Index(fragment[start:], "</em>")
		if end < 0 {
			break
		}
		b.WriteString(fragment[:start])
		b.WriteString(yellow(fragment[start+4 : start+end]))
		fragment = fragment[start+end+5:]
	}
	b.WriteString(fragment)
	return b.String()
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchTags, "tags", nil, "Only documents carrying any of these tags")
	searchCmd.Flags().StringVar(&searchFromDate, "from-date", "", "Created at or after (RFC 3339 or date)")
	searchCmd.Flags().StringVar(&searchToDate, "to-date", "", "Created at or before (RFC 3339 or date)")
	searchCmd.Flags().StringVar(&docIndex, "index", "", "Index name (server default when empty)")
	searchCmd.Flags().IntVar(&docSize, "size", 10, "Page size")
	searchCmd.Flags().IntVar(&docFrom, "from", 0, "Offset")
}
