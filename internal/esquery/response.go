package esquery

import "encoding/json"

// Bucket is one term-aggregation bucket: a distinct field value and the
// number of documents carrying it.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"doc_count"`
}

// The extractors below walk response trees defensively: a missing key, a
// wrong shape, or a body that does not parse at all yields an empty result,
// never an error. The paginating caller relies on a numeric total to decide
// whether to keep fetching, so "malformed" and "no results" are the same
// answer here.

// ExtractDocuments parses a hits envelope and returns the document sources in
// response order along with the total number of results available. Both the
// legacy numeric "total" and the object form {"value": n} are accepted.
func ExtractDocuments(body []byte) ([]map[string]interface{}, int) {
	docs := []map[string]interface{}{}
	root := map[string]interface{}{}
	if err := json.Unmarshal(body, &root); err != nil {
		return docs, 0
	}
	hits, ok := root["hits"].(map[string]interface{})
	if !ok {
		return docs, 0
	}
	total := totalHits(hits["total"])
	hitList, ok := hits["hits"].([]interface{})
	if !ok {
		return docs, total
	}
	for _, h := range hitList {
		hit, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		if src, ok := hit["_source"].(map[string]interface{}); ok {
			docs = append(docs, src)
		}
	}
	return docs, total
}

func totalHits(v interface{}) int {
	n := 0
	switch t := v.(type) {
	case float64:
		n = int(t)
	case map[string]interface{}:
		if f, ok := t["value"].(float64); ok {
			n = int(f)
		}
	}
	// a backend reporting a negative total is malformed, same as no results
	if n < 0 {
		return 0
	}
	return n
}

// ExtractBuckets returns the buckets of the named aggregation, empty if the
// aggregation subtree is absent or malformed.
func ExtractBuckets(aggregateName string, body []byte) []Bucket {
	buckets := []Bucket{}
	root := map[string]interface{}{}
	if err := json.Unmarshal(body, &root); err != nil {
		return buckets
	}
	aggs, ok := root["aggregations"].(map[string]interface{})
	if !ok {
		return buckets
	}
	agg, ok := aggs[aggregateName].(map[string]interface{})
	if !ok {
		return buckets
	}
	rawBuckets, ok := agg["buckets"].([]interface{})
	if !ok {
		return buckets
	}
	for _, rb := range rawBuckets {
		b, ok := rb.(map[string]interface{})
		if !ok {
			continue
		}
		bucket := Bucket{}
		if k, ok := b["key"].(string); ok {
			bucket.Key = k
		}
		if c, ok := b["doc_count"].(float64); ok {
			bucket.Count = int(c)
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// IsAcknowledged reports whether the response carries a top-level
// "acknowledged": true. Index creation and deletion confirm this way.
func IsAcknowledged(body []byte) bool {
	root := map[string]interface{}{}
	if err := json.Unmarshal(body, &root); err != nil {
		return false
	}
	ack, _ := root["acknowledged"].(bool)
	return ack
}

// BulkStatuses collects the per-item HTTP status codes from a bulk response,
// in document order.
func BulkStatuses(body []byte) []int {
	statuses := []int{}
	root := map[string]interface{}{}
	if err := json.Unmarshal(body, &root); err != nil {
		return statuses
	}
	items, ok := root["items"].([]interface{})
	if !ok {
		return statuses
	}
	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		// each item wraps a single operation object ("create", "index", ...)
		for _, op := range item {
			opObj, ok := op.(map[string]interface{})
			if !ok {
				continue
			}
			if s, ok := opObj["status"].(float64); ok {
				statuses = append(statuses, int(s))
			}
		}
	}
	return statuses
}

// IsValidJSON reports whether the text tokenizes as JSON.
func IsValidJSON(text string) bool {
	return json.Valid([]byte(text))
}
