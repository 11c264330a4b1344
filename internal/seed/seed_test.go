package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/database"
	"github.com/zfogg/citysearch/internal/repository"
	"gorm.io/driver/sqlite"
)

func newRepo(t *testing.T) *repository.CityRepository {
	t.Helper()
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "cities"))
	return repository.NewCityRepository(db, "cities")
}

func TestSampleDocuments(t *testing.T) {
	docs := SampleDocuments()
	require.Len(t, docs, 8)
	for _, d := range docs {
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Content)
		assert.NotEmpty(t, d.Tags)
	}
}

func TestFakeCities_Deterministic(t *testing.T) {
	a := FakeCities(5, 42)
	b := FakeCities(5, 42)
	require.Len(t, a, 5)
	assert.Equal(t, a, b)
	for _, c := range a {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.State)
		assert.GreaterOrEqual(t, c.Population, int64(500))
	}
}

func TestKnownCities_IsACopy(t *testing.T) {
	cities := KnownCities()
	cities[0].Name = "changed"
	assert.NotEqual(t, "changed", KnownCities()[0].Name)
}

func TestCitySeeder(t *testing.T) {
	repo := newRepo(t)
	s := NewCitySeeder(repo)
	ctx := context.Background()

	n, err := s.Seed(ctx, 10, 1, false)
	require.NoError(t, err)
	assert.Equal(t, len(KnownCities())+10, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)

	// second run is a no-op
	n, err = s.Seed(ctx, 10, 1, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	top, err := repo.ListByPopulation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "New York", top[0].Name)

	deleted, err := s.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, deleted)
}
