package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zfogg/citysearch/internal/models"
)

// CityDocument is the indexed form of a city row
type CityDocument struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	State       string      `json:"state"`
	Population  int64       `json:"population"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Suggest     CitySuggest `json:"suggest"`
}

// CitySuggest feeds the completion field
type CitySuggest struct {
	Input  []string `json:"input"`
	Weight int64    `json:"weight"`
}

// CityToSearchDoc derives the indexed document from a city row
func CityToSearchDoc(city models.City) CityDocument {
	location := CityLocation(city.Name, city.State)
	return CityDocument{
		ID:          city.ID,
		Name:        city.Name,
		State:       city.State,
		Population:  city.Population,
		Description: city.Description,
		Location:    location,
		Suggest: CitySuggest{
			Input:  []string{city.Name, location, city.State},
			Weight: SuggestWeight(city.Population),
		},
	}
}

// CityLocation is the combined "{name}, {state}" field, verbatim
func CityLocation(name, state string) string {
	return fmt.Sprintf("%s, %s", name, state)
}

// SuggestWeight is floor(population / 1000). Negative populations are not
// valid source data and weigh zero.
func SuggestWeight(population int64) int64 {
	if population <= 0 {
		return 0
	}
	return population / 1000
}

// CityDocumentID is the search-engine _id for a city: its relational id
func CityDocumentID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Document is a free-form document stored only in the search index
type Document struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// NormalizeTags trims tags and drops empties and duplicates, keeping first-seen order
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Timestamp formats t the way documents store created_at/updated_at
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
