package search

import (
	"encoding/json"
	"fmt"
)

// CityHit is a city projected from a search hit
type CityHit struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	Population  int64   `json:"population"`
	Description string  `json:"description"`
	Score       float64 `json:"score,omitempty"`
}

// DocumentHit is a generic document projected from a search hit
type DocumentHit struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score,omitempty"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Tags      []string            `json:"tags,omitempty"`
	CreatedAt string              `json:"created_at,omitempty"`
	UpdatedAt string              `json:"updated_at,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// DocumentResults is the formatted response of a document search or listing
type DocumentResults struct {
	Total int64         `json:"total"`
	Took  int           `json:"took"`
	Hits  []DocumentHit `json:"hits"`
}

// Suggestion is one completion suggestion
type Suggestion struct {
	Text       string `json:"text"`
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	State      string `json:"state,omitempty"`
	Population int64  `json:"population,omitempty"`
}

func hitScore(h Hit) float64 {
	if h.Score == nil {
		return 0
	}
	return *h.Score
}

// FormatCities projects city hits, keeping id and score
func FormatCities(resp *SearchResponse) ([]CityHit, error) {
	cities := make([]CityHit, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc CityDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, decodeFailure(fmt.Sprintf("city hit %s", hit.ID), err)
		}
		cities = append(cities, CityHit{
			ID:          doc.ID,
			Name:        doc.Name,
			State:       doc.State,
			Population:  doc.Population,
			Description: doc.Description,
			Score:       hitScore(hit),
		})
	}
	return cities, nil
}

// FormatDocuments projects document hits with their highlights
func FormatDocuments(resp *SearchResponse) (*DocumentResults, error) {
	results := &DocumentResults{
		Total: resp.Hits.Total.Value,
		Took:  resp.Took,
		Hits:  make([]DocumentHit, 0, len(resp.Hits.Hits)),
	}
	for _, hit := range resp.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, decodeFailure(fmt.Sprintf("document hit %s", hit.ID), err)
		}
		results.Hits = append(results.Hits, DocumentHit{
			ID:        hit.ID,
			Score:     hitScore(hit),
			Title:     doc.Title,
			Content:   doc.Content,
			Tags:      doc.Tags,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
			Highlight: hit.Highlight,
		})
	}
	return results, nil
}

// FormatSuggestions flattens the completion suggester options
func FormatSuggestions(resp *SearchResponse) []Suggestion {
	suggestions := []Suggestion{}
	for _, entries := range resp.Suggest {
		for _, entry := range entries {
			for _, opt := range entry.Options {
				s := Suggestion{Text: opt.Text, ID: opt.ID}
				var doc CityDocument
				if len(opt.Source) > 0 && json.Unmarshal(opt.Source, &doc) == nil {
					s.Name = doc.Name
					s.State = doc.State
					s.Population = doc.Population
				}
				suggestions = append(suggestions, s)
			}
		}
	}
	return suggestions
}
