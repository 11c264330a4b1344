package search

// MappingVersion tracks the city index schema. Increment it whenever
// CityIndexMapping changes so reconciliation rebuilds stale indices.
// v1: initial mapping, v2: top-level suggest completion field
const MappingVersion = 2

// CityIndexMapping returns the settings and mappings used when the city
// index is recreated.
func CityIndexMapping() map[string]interface{} {
	cityText := func() map[string]interface{} {
		return map[string]interface{}{
			"type":     "text",
			"analyzer": "city_analyzer",
		}
	}

	name := cityText()
	name["fields"] = map[string]interface{}{
		"keyword": map[string]interface{}{"type": "keyword"},
		"suggest": map[string]interface{}{"type": "completion"},
	}

	state := cityText()
	state["fields"] = map[string]interface{}{
		"keyword": map[string]interface{}{"type": "keyword"},
	}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"city_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"_meta": map[string]interface{}{
				"version": MappingVersion,
			},
			"properties": map[string]interface{}{
				"id":          map[string]interface{}{"type": "integer"},
				"name":        name,
				"state":       state,
				"population":  map[string]interface{}{"type": "integer"},
				"description": cityText(),
				"location":    cityText(),
				"suggest": map[string]interface{}{
					"type":     "completion",
					"analyzer": "simple",
				},
			},
		},
	}
}

// DocumentIndexMapping is the default mapping for generic document indices
func DocumentIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":      map[string]interface{}{"type": "text", "analyzer": "standard"},
				"content":    map[string]interface{}{"type": "text", "analyzer": "standard"},
				"tags":       map[string]interface{}{"type": "keyword"},
				"created_at": map[string]interface{}{"type": "date"},
				"updated_at": map[string]interface{}{"type": "date"},
			},
		},
	}
}
