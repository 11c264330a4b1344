package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/database"
	"github.com/zfogg/citysearch/internal/documents"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/repository"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/seed"
	"go.uber.org/zap"
)

var (
	fakeCount int
	fakeSeed  uint64
	force     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Seed the city table and the sample documents",
	SilenceUsage: true,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Seed the cities table with known cities plus generated ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, repo, err := openCities()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		logger.Log.Info("Seeding cities",
			zap.String("table", cfg.Database.CitiesTable),
			zap.Int("fake", fakeCount),
			zap.Bool("force", force),
		)
		n, err := seed.NewCitySeeder(repo).Seed(ctx, fakeCount, fakeSeed, force)
		if err != nil {
			return fmt.Errorf("failed to seed cities: %w", err)
		}
		if n == 0 {
			fmt.Println("Cities table already populated, use --force to add more")
			return nil
		}
		fmt.Printf("Seeded %d cities\n", n)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every row from the cities table",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, repo, err := openCities()
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := seed.NewCitySeeder(repo).Clean(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clean cities: %w", err)
		}
		fmt.Printf("Deleted %d cities\n", n)
		return nil
	},
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Index the sample documents into Elasticsearch",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openDocuments()
		if err != nil {
			return err
		}

		res, err := svc.Seed(cmd.Context(), seed.SampleDocuments())
		if err != nil {
			return fmt.Errorf("failed to seed documents: %w", err)
		}
		if res.Existing > 0 {
			fmt.Printf("Sample data already exists in %s (%d documents)\n", res.Index, res.Existing)
			return nil
		}
		fmt.Printf("Indexed %d documents into %s\n", res.Created, res.Index)
		return nil
	},
}

var clearDocumentsCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document from the documents index",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openDocuments()
		if err != nil {
			return err
		}
		n, err := svc.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear documents: %w", err)
		}
		fmt.Printf("Deleted %d documents from %s\n", n, svc.Index(""))
		return nil
	},
}

func init() {
	citiesCmd.Flags().IntVar(&fakeCount, "fake", 0, "number of generated cities to add")
	citiesCmd.Flags().Uint64Var(&fakeSeed, "seed", 42, "random seed for generated cities")
	citiesCmd.Flags().BoolVar(&force, "force", false, "insert even when the table has rows")

	documentsCmd.AddCommand(clearDocumentsCmd)
	rootCmd.AddCommand(citiesCmd, cleanCmd, documentsCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func openCities() (*config.Config, *repository.CityRepository, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := database.Initialize(cfg.Database, false); err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(database.DB, cfg.Database.CitiesTable); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return cfg, repository.NewCityRepository(database.DB, cfg.Database.CitiesTable), nil
}

func openDocuments() (*documents.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}
	return documents.NewService(client, cfg.DocumentsIndex), nil
}
