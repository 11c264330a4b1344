package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/zfogg/citysearch/internal/config"
	applogger "github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the Postgres connection
func Initialize(cfg config.DatabaseConfig, development bool) error {
	db, err := Open(postgres.Open(cfg.DSN()), development)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	applogger.Log.Info("Database connected", zap.String("database", cfg.Name))
	return nil
}

// Open opens a gorm handle on dialector with the service's settings
func Open(dialector gorm.Dialector, development bool) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if development {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the cities table and its search indexes when the table
// does not exist yet. An existing table belongs to the source of record and
// is left untouched.
func Migrate(db *gorm.DB, table string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if db.Migrator().HasTable(table) {
		applogger.Log.Info("Cities table exists, skipping migrations", zap.String("table", table))
		return nil
	}

	if err := db.Table(table).AutoMigrate(&models.City{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	quoted := pq.QuoteIdentifier(table)
	indexes := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (LOWER(name))", pq.QuoteIdentifier("idx_"+table+"_name_lower"), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (LOWER(state))", pq.QuoteIdentifier("idx_"+table+"_state_lower"), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (population DESC)", pq.QuoteIdentifier("idx_"+table+"_population_desc"), quoted),
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			applogger.Log.Warn("Could not create index", zap.String("statement", stmt), zap.Error(err))
		}
	}

	applogger.Log.Info("Database migrations completed", zap.String("table", table))
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
