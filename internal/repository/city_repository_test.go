package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/citysearch/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CityRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo *CityRepository
	ctx  context.Context
}

func (s *CityRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file:"+s.T().Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.Table("us_cities").AutoMigrate(&models.City{}))

	s.db = db
	s.repo = NewCityRepository(db, "us_cities")
	s.ctx = context.Background()

	require.NoError(s.T(), s.repo.CreateBatch(s.ctx, []models.City{
		{ID: 1, Name: "Springfield", State: "Illinois", Population: 114394, Description: "State capital"},
		{ID: 2, Name: "Chicago", State: "Illinois", Population: 2746388, Description: "The Windy City"},
		{ID: 3, Name: "Denver", State: "Colorado", Population: 715522, Description: "Mile High City near the springs"},
		{ID: 4, Name: "Colorado Springs", State: "Colorado", Population: 478961, Description: "Pikes Peak"},
		{ID: 5, Name: "Boulder", State: "Colorado", Population: 108250, Description: "Flatirons"},
		{ID: 6, Name: "Peoria", State: "Illinois", Population: 113150, Description: "100% river town"},
	}))
}

func (s *CityRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func names(cities []models.City) []string {
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		out = append(out, c.Name)
	}
	return out
}

func (s *CityRepositoryTestSuite) TestSearch_NameBeforeStateBeforeDescription() {
	cities, err := s.repo.Search(s.ctx, "spring", 10)
	s.Require().NoError(err)
	// name matches by population, then description-only matches
	s.Equal([]string{"Colorado Springs", "Springfield", "Denver"}, names(cities))
}

func (s *CityRepositoryTestSuite) TestSearch_StateMatchesRankSecond() {
	cities, err := s.repo.Search(s.ctx, "colorado", 10)
	s.Require().NoError(err)
	s.Equal([]string{"Colorado Springs", "Denver", "Boulder"}, names(cities))
}

func (s *CityRepositoryTestSuite) TestSearch_CaseInsensitive() {
	cities, err := s.repo.Search(s.ctx, "CHICAGO", 10)
	s.Require().NoError(err)
	s.Equal([]string{"Chicago"}, names(cities))
}

func (s *CityRepositoryTestSuite) TestSearch_WildcardsAreLiteral() {
	cities, err := s.repo.Search(s.ctx, "100%", 10)
	s.Require().NoError(err)
	s.Equal([]string{"Peoria"}, names(cities))

	cities, err = s.repo.Search(s.ctx, "_", 10)
	s.Require().NoError(err)
	s.Empty(cities)
}

func (s *CityRepositoryTestSuite) TestSearch_BlankListsByPopulation() {
	cities, err := s.repo.Search(s.ctx, "  ", 3)
	s.Require().NoError(err)
	s.Equal([]string{"Chicago", "Denver", "Colorado Springs"}, names(cities))
}

func (s *CityRepositoryTestSuite) TestSearch_Limit() {
	cities, err := s.repo.Search(s.ctx, "i", 2)
	s.Require().NoError(err)
	s.Len(cities, 2)
}

func (s *CityRepositoryTestSuite) TestAllByPopulationAndCount() {
	cities, err := s.repo.AllByPopulation(s.ctx)
	s.Require().NoError(err)
	s.Len(cities, 6)
	s.Equal("Chicago", cities[0].Name)
	s.Equal("Boulder", cities[5].Name)

	n, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(6), n)
}

func (s *CityRepositoryTestSuite) TestDeleteAll() {
	deleted, err := s.repo.DeleteAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(6), deleted)

	n, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func TestCityRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CityRepositoryTestSuite))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%sea%`, likePattern("SEA"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestNewCityRepository_DefaultTable(t *testing.T) {
	assert.Equal(t, "cities", NewCityRepository(nil, "").Table())
}
