package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/models"
	"go.uber.org/zap"
)

// CityStore is where seeded cities are written
type CityStore interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, cities []models.City) error
	DeleteAll(ctx context.Context) (int64, error)
}

// knownCities are real US cities with approximate 2020 census populations
var knownCities = []models.City{
	{Name: "New York", State: "New York", Population: 8804190, Description: "The most populous city in the United States, made up of five boroughs."},
	{Name: "Los Angeles", State: "California", Population: 3898747, Description: "Center of the American film and television industry."},
	{Name: "Chicago", State: "Illinois", Population: 2746388, Description: "Lakefront city known for its architecture and deep-dish pizza."},
	{Name: "Houston", State: "Texas", Population: 2304580, Description: "Home of NASA's Johnson Space Center and a major energy hub."},
	{Name: "Phoenix", State: "Arizona", Population: 1608139, Description: "Desert capital of Arizona with year-round sunshine."},
	{Name: "Philadelphia", State: "Pennsylvania", Population: 1603797, Description: "Birthplace of the Declaration of Independence."},
	{Name: "San Antonio", State: "Texas", Population: 1434625, Description: "Known for the Alamo and the River Walk."},
	{Name: "San Diego", State: "California", Population: 1386932, Description: "Coastal city with beaches, parks and a large naval presence."},
	{Name: "Dallas", State: "Texas", Population: 1304379, Description: "Commercial and cultural hub of North Texas."},
	{Name: "Austin", State: "Texas", Population: 961855, Description: "State capital known for live music and technology companies."},
	{Name: "Jacksonville", State: "Florida", Population: 949611, Description: "Largest city by area in the contiguous United States."},
	{Name: "Columbus", State: "Ohio", Population: 905748, Description: "State capital and home of Ohio State University."},
	{Name: "Indianapolis", State: "Indiana", Population: 887642, Description: "Hosts the Indianapolis 500 motor race."},
	{Name: "Charlotte", State: "North Carolina", Population: 874579, Description: "Major banking center in the Southeast."},
	{Name: "San Francisco", State: "California", Population: 873965, Description: "Hilly city on the bay, known for the Golden Gate Bridge."},
	{Name: "Seattle", State: "Washington", Population: 737015, Description: "Pacific Northwest city surrounded by water and mountains."},
	{Name: "Denver", State: "Colorado", Population: 715522, Description: "The Mile High City at the foot of the Rocky Mountains."},
	{Name: "Washington", State: "District of Columbia", Population: 689545, Description: "Capital of the United States."},
	{Name: "Boston", State: "Massachusetts", Population: 675647, Description: "One of the oldest cities in the country, rich in history."},
	{Name: "Nashville", State: "Tennessee", Population: 689447, Description: "Music City, center of the country music industry."},
	{Name: "Portland", State: "Oregon", Population: 652503, Description: "Known for parks, bridges and a thriving food scene."},
	{Name: "Las Vegas", State: "Nevada", Population: 641903, Description: "Resort city famous for its entertainment and casinos."},
	{Name: "Salt Lake City", State: "Utah", Population: 199723, Description: "Capital of Utah near the Great Salt Lake."},
	{Name: "Colorado Springs", State: "Colorado", Population: 478961, Description: "City at the base of Pikes Peak."},
	{Name: "Springfield", State: "Illinois", Population: 114394, Description: "Capital of Illinois and home of Abraham Lincoln."},
	{Name: "Springfield", State: "Missouri", Population: 169176, Description: "Birthplace of Route 66."},
	{Name: "Seaside", State: "Oregon", Population: 7115, Description: "Beach town at the end of the Lewis and Clark Trail."},
	{Name: "Boise", State: "Idaho", Population: 235684, Description: "Capital of Idaho along the Boise River."},
}

// KnownCities returns a copy of the fixed city list
func KnownCities() []models.City {
	out := make([]models.City, len(knownCities))
	copy(out, knownCities)
	return out
}

// FakeCities generates n synthetic cities. The same seed yields the same cities.
func FakeCities(n int, seed uint64) []models.City {
	faker := gofakeit.New(seed)
	cities := make([]models.City, 0, n)
	for i := 0; i < n; i++ {
		cities = append(cities, models.City{
			Name:        faker.City(),
			State:       faker.State(),
			Population:  int64(faker.IntRange(500, 2000000)),
			Description: faker.HipsterSentence(),
		})
	}
	return cities
}

// CitySeeder populates the cities table
type CitySeeder struct {
	store CityStore
}

// NewCitySeeder creates a seeder writing to store
func NewCitySeeder(store CityStore) *CitySeeder {
	return &CitySeeder{store: store}
}

// Seed inserts the known cities plus fake synthetic ones. It does nothing
// when the table already has rows unless force is set.
func (s *CitySeeder) Seed(ctx context.Context, fake int, seed uint64, force bool) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 && !force {
		logger.Log.Info("Cities already seeded, skipping", zap.Int64("count", count))
		return 0, nil
	}

	cities := append(KnownCities(), FakeCities(fake, seed)...)
	if err := s.store.CreateBatch(ctx, cities); err != nil {
		return 0, fmt.Errorf("failed to seed cities: %w", err)
	}

	logger.Log.Info("Seeded cities",
		zap.Int("known", len(knownCities)),
		zap.Int("fake", fake),
	)
	return len(cities), nil
}

// Clean removes every city
func (s *CitySeeder) Clean(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}
