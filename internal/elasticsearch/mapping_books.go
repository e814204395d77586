package elasticsearch

// BooksMapping returns the index mapping for book records. Title and
// publisher are full text with a parallel keyword sub-field for exact match
// and sorting; author is full text only; the author sort key and genre are
// keywords; year is a date keyed by a four-digit-year format; price is
// numeric. The mapping must be installed before the first document is
// written or the engine will infer the wrong field types.
func BooksMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"author":           map[string]interface{}{"type": "text"},
				"author_last_name": map[string]interface{}{"type": "keyword"},
				"genre":            map[string]interface{}{"type": "keyword"},
				"publisher": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"year": map[string]interface{}{
					"type":   "date",
					"format": "yyyy",
				},
				"price": map[string]interface{}{"type": "float"},
			},
		},
	}
}
