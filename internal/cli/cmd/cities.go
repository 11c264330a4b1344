package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var (
	citiesLimit         int
	citiesOffset        int
	citiesFromDB        bool
	citiesState         string
	citiesMinPopulation int64
	suggestSize         int
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Search cities",
}

var citiesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Typeahead city search",
	Long:  "Search cities in Elasticsearch, or in Postgres with --db. An empty query lists the largest cities.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		var (
			resp *api.CitiesResponse
			err  error
		)
		if citiesFromDB {
			resp, err = api.SearchCitiesDB(query, citiesLimit)
		} else {
			resp, err = api.SearchCitiesES(query, citiesLimit, citiesOffset)
		}
		if err != nil {
			if api.IsNotFound(err) {
				output.PrintWarning("city index does not exist, run 'citysearch sync run' first")
			}
			return err
		}
		return printCities(resp)
	},
}

var citiesFilterCmd = &cobra.Command{
	Use:   "filter [query]",
	Short: "Structured city search with state and population filters",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.SearchCitiesStructured(strings.Join(args, " "), api.CityFilters{
			Limit:         citiesLimit,
			MinPopulation: citiesMinPopulation,
			State:         citiesState,
		})
		if err != nil {
			return err
		}
		return printCities(resp)
	},
}

var citiesSuggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "City name completions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.SuggestCities(args[0], suggestSize)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(resp.Suggestions))
		for _, s := range resp.Suggestions {
			rows = append(rows, []string{s.Text, s.State, formatPopulation(s.Population)})
		}
		return output.PrintTable([]string{"SUGGESTION", "STATE", "POPULATION"}, rows, resp)
	},
}

func printCities(resp *api.CitiesResponse) error {
	rows := make([][]string, 0, len(resp.Cities))
	for _, c := range resp.Cities {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.State,
			formatPopulation(c.Population),
			c.Description,
		})
	}
	if err := output.PrintTable([]string{"ID", "NAME", "STATE", "POPULATION", "DESCRIPTION"}, rows, resp); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON && resp.Msg != "" {
		output.PrintInfo("%s", resp.Msg)
	}
	return nil
}

// formatPopulation groups digits: 2746388 -> 2,746,388
func formatPopulation(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + formatPopulation(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func init() {
	citiesSearchCmd.Flags().IntVarP(&citiesLimit, "limit", "l", 10, "Maximum results (1-100)")
	citiesSearchCmd.Flags().IntVar(&citiesOffset, "offset", 0, "Results to skip (Elasticsearch only)")
	citiesSearchCmd.Flags().BoolVar(&citiesFromDB, "db", false, "Search Postgres instead of Elasticsearch")

	citiesFilterCmd.Flags().IntVarP(&citiesLimit, "limit", "l", 10, "Maximum results (1-100)")
	citiesFilterCmd.Flags().StringVar(&citiesState, "state", "", "Exact state name")
	citiesFilterCmd.Flags().Int64Var(&citiesMinPopulation, "min-population", 0, "Minimum population")

	citiesSuggestCmd.Flags().IntVar(&suggestSize, "size", 10, "Number of suggestions")

	citiesCmd.AddCommand(citiesSearchCmd, citiesFilterCmd, citiesSuggestCmd)
}
