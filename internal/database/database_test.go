package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/models"
	"gorm.io/driver/sqlite"
)

func TestMigrateAndHealth(t *testing.T) {
	db, err := Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), false)
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "us_cities"))
	assert.True(t, db.Migrator().HasTable("us_cities"))

	require.NoError(t, db.Table("us_cities").Create(&models.City{Name: "Boise", State: "Idaho", Population: 235684}).Error)
	var n int64
	require.NoError(t, db.Table("us_cities").Count(&n).Error)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, Health(context.Background(), db))
}

func TestMigrate_NilDB(t *testing.T) {
	assert.Error(t, Migrate(nil, "cities"))
	assert.Error(t, Health(context.Background(), nil))
}

func TestMigrate_LeavesExistingTableAlone(t *testing.T) {
	db, err := Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), false)
	require.NoError(t, err)

	ddl := "CREATE TABLE cities (id INTEGER PRIMARY KEY, name TEXT, state TEXT, population INTEGER, description TEXT)"
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec("INSERT INTO cities (id, name, state, population) VALUES (1, 'Nowhere', NULL, NULL)").Error)

	require.NoError(t, Migrate(db, "cities"))

	var schema string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'cities'").Scan(&schema).Error)
	assert.Equal(t, ddl, schema)

	var indexes int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = 'cities'").Scan(&indexes).Error)
	assert.Zero(t, indexes)

	var n int64
	require.NoError(t, db.Table("cities").Where("state IS NULL").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
