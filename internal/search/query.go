package search

import (
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// CityQuery is a free-text typeahead search over the city index
type CityQuery struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// StructuredCityQuery is the filtered browsing variant
type StructuredCityQuery struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	MinPopulation int64  `json:"minPopulation"`
	State         string `json:"state"`
}

// DocumentQuery is a full-text search over a generic document index
type DocumentQuery struct {
	Query string         `json:"query"`
	Index string         `json:"index,omitempty"`
	Size  int            `json:"size"`
	From  int            `json:"from"`
	Tags  []string       `json:"tags,omitempty"`
	Dates DateRangeQuery `json:"dateRange,omitempty"`
}

// DateRangeQuery bounds created_at inclusively. Empty bounds are open.
type DateRangeQuery struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// ClampLimit applies the default and upper bound to a requested result size
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func citySort() []interface{} {
	return []interface{}{
		"_score",
		map[string]interface{}{"population": map[string]interface{}{"order": "desc"}},
	}
}

// BuildCityQuery builds the boosted typeahead query. A blank term matches
// every city, ordered by population.
func BuildCityQuery(q CityQuery) map[string]interface{} {
	body := map[string]interface{}{
		"size": ClampLimit(q.Limit),
		"sort": citySort(),
	}
	if q.Offset > 0 {
		body["from"] = q.Offset
	}

	term := strings.TrimSpace(q.Query)
	if term == "" {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
		return body
	}

	lower := strings.ToLower(term)
	body["query"] = map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []map[string]interface{}{
				// "sea" -> "Seattle"
				{"prefix": map[string]interface{}{
					"name": map[string]interface{}{"value": lower, "boost": 3.0},
				}},
				{"wildcard": map[string]interface{}{
					"name": map[string]interface{}{"value": "*" + lower + "*", "boost": 2.5},
				}},
				{"match": map[string]interface{}{
					"name": map[string]interface{}{"query": term, "fuzziness": "AUTO", "boost": 2.0},
				}},
				{"match": map[string]interface{}{
					"name.keyword": map[string]interface{}{"query": term, "boost": 4.0},
				}},
				{"match": map[string]interface{}{
					"state": map[string]interface{}{"query": term, "boost": 1.5},
				}},
				{"prefix": map[string]interface{}{
					"state": map[string]interface{}{"value": lower, "boost": 1.3},
				}},
				{"match": map[string]interface{}{
					"description": map[string]interface{}{"query": term, "boost": 1.0},
				}},
				{"match": map[string]interface{}{
					"location": map[string]interface{}{"query": term, "boost": 2.0},
				}},
			},
			"minimum_should_match": 1,
		},
	}
	return body
}

// BuildStructuredCityQuery builds a single fuzzy multi_match with
// non-scoring filters.
func BuildStructuredCityQuery(q StructuredCityQuery) map[string]interface{} {
	var must []map[string]interface{}
	if term := strings.TrimSpace(q.Query); term != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     term,
				"fields":    []string{"name^3", "state^2", "location^2", "description"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filter := []map[string]interface{}{}
	if q.MinPopulation > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{
				"population": map[string]interface{}{"gte": q.MinPopulation},
			},
		})
	}
	if state := strings.TrimSpace(q.State); state != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"state.keyword": state},
		})
	}

	return map[string]interface{}{
		"size": ClampLimit(q.Limit),
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": citySort(),
	}
}

// BuildSuggestQuery asks the completion field for city name suggestions
func BuildSuggestQuery(prefix string, size int) map[string]interface{} {
	return map[string]interface{}{
		"_source": []string{"id", "name", "state", "population"},
		"suggest": map[string]interface{}{
			"city-suggest": map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           "suggest",
					"size":            ClampLimit(size),
					"skip_duplicates": true,
				},
			},
		},
	}
}

// BuildDocumentQuery builds the document search body. Filters are
// conjunctive and never affect the score.
func BuildDocumentQuery(q DocumentQuery) (map[string]interface{}, error) {
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return nil, ErrEmptyQuery
	}

	filter := []map[string]interface{}{}
	if tags := NormalizeTags(q.Tags); len(tags) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"tags": tags},
		})
	}
	if q.Dates.From != "" || q.Dates.To != "" {
		bounds := map[string]interface{}{}
		if q.Dates.From != "" {
			bounds["gte"] = q.Dates.From
		}
		if q.Dates.To != "" {
			bounds["lte"] = q.Dates.To
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"created_at": bounds},
		})
	}

	size := q.Size
	if size <= 0 {
		size = DefaultLimit
	}
	from := q.From
	if from < 0 {
		from = 0
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"multi_match": map[string]interface{}{
						"query":     term,
						"fields":    []string{"title^2", "content", "tags"},
						"type":      "best_fields",
						"fuzziness": "AUTO",
					}},
				},
				"filter": filter,
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"title": map[string]interface{}{},
				"content": map[string]interface{}{
					"fragment_size":       150,
					"number_of_fragments": 3,
				},
			},
		},
		"size": size,
		"from": from,
	}, nil
}

// BuildListQuery pages through every document of an index
func BuildListQuery(size, from int) map[string]interface{} {
	if size <= 0 {
		size = DefaultLimit
	}
	if from < 0 {
		from = 0
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  size,
		"from":  from,
	}
}
