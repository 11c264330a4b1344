package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/zfogg/citysearch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CityRepository reads and writes the cities table. The table name is
// configurable; gorm quotes it for the active dialect.
type CityRepository struct {
	db    *gorm.DB
	table string
}

// NewCityRepository creates a repository over table
func NewCityRepository(db *gorm.DB, table string) *CityRepository {
	if table == "" {
		table = models.City{}.TableName()
	}
	return &CityRepository{db: db, table: table}
}

// Table returns the unquoted table name
func (r *CityRepository) Table() string {
	return r.table
}

func (r *CityRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// likePattern builds a case-insensitive substring pattern with LIKE
// wildcards in the term escaped.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(term)) + "%"
}

// Search returns cities whose name, state or description contains q, name
// matches first, then state matches, then the rest, each by population.
// A blank q lists the largest cities.
func (r *CityRepository) Search(ctx context.Context, q string, limit int) ([]models.City, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.ListByPopulation(ctx, limit)
	}

	pattern := likePattern(q)
	var cities []models.City
	err := r.query(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(state) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                `CASE WHEN LOWER(name) LIKE ? ESCAPE '\' THEN 1 WHEN LOWER(state) LIKE ? ESCAPE '\' THEN 2 ELSE 3 END, population DESC`,
			Vars:               []interface{}{pattern, pattern},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	return cities, nil
}

// ListByPopulation returns the limit largest cities
func (r *CityRepository) ListByPopulation(ctx context.Context, limit int) ([]models.City, error) {
	var cities []models.City
	if err := r.query(ctx).Order("population DESC").Limit(limit).Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// AllByPopulation returns every city, largest first. It is the reindex source.
func (r *CityRepository) AllByPopulation(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	if err := r.query(ctx).Order("population DESC").Order("id").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to read cities: %w", err)
	}
	return cities, nil
}

// Count returns the number of rows
func (r *CityRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.query(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count cities: %w", err)
	}
	return n, nil
}

// CreateBatch inserts cities in batches
func (r *CityRepository) CreateBatch(ctx context.Context, cities []models.City) error {
	if len(cities) == 0 {
		return nil
	}
	if err := r.query(ctx).CreateInBatches(cities, 500).Error; err != nil {
		return fmt.Errorf("failed to insert cities: %w", err)
	}
	return nil
}

// DeleteAll removes every row and returns how many were deleted
func (r *CityRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.query(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.City{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete cities: %w", res.Error)
	}
	return res.RowsAffected, nil
}
