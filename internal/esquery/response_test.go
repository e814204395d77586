package esquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocuments(t *testing.T) {
	body := []byte(`{
		"hits": {
			"total": {"value": 42, "relation": "eq"},
			"hits": [
				{"_id": "a", "_source": {"title": "Neuromancer", "author": "William Gibson"}},
				{"_id": "b", "_source": {"title": "Excession", "author": "Iain M. Banks"}}
			]
		}
	}`)
	docs, total := ExtractDocuments(body)
	assert.Equal(t, 42, total)
	assert.Len(t, docs, 2)
	assert.Equal(t, "Neuromancer", docs[0]["title"])
	assert.Equal(t, "Excession", docs[1]["title"])
}

func TestExtractDocumentsLegacyNumericTotal(t *testing.T) {
	body := []byte(`{"hits": {"total": 7, "hits": []}}`)
	docs, total := ExtractDocuments(body)
	assert.Equal(t, 7, total)
	assert.Empty(t, docs)
}

func TestExtractDocumentsTolerance(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"hits": {`,
		"not json":       `<html>bad gateway</html>`,
		"empty":          ``,
		"no hits":        `{"took": 3}`,
		"hits not map":   `{"hits": []}`,
		"hitlist absent": `{"hits": {"total": {"value": 0}}}`,
		"hit not map":    `{"hits": {"total": 1, "hits": ["oops"]}}`,
	}
	for name, body := range cases {
		docs, _ := ExtractDocuments([]byte(body))
		assert.NotNil(t, docs, name)
		assert.Empty(t, docs, name)
	}
}

func TestExtractDocumentsNegativeTotal(t *testing.T) {
	docs, total := ExtractDocuments([]byte(`{"hits": {"total": -3, "hits": []}}`))
	assert.Equal(t, 0, total, "a negative total is malformed, same as no results")
	assert.Empty(t, docs)

	docs, total = ExtractDocuments([]byte(`{"hits": {"total": {"value": -1}, "hits": []}}`))
	assert.Equal(t, 0, total)
	assert.Empty(t, docs)
}

func TestExtractBuckets(t *testing.T) {
	body := []byte(`{
		"hits": {"total": {"value": 5}},
		"aggregations": {
			"genres": {
				"buckets": [
					{"key": "Fiction", "doc_count": 3},
					{"key": "History", "doc_count": 2}
				]
			}
		}
	}`)
	buckets := ExtractBuckets("genres", body)
	assert.Equal(t, []Bucket{
		{Key: "Fiction", Count: 3},
		{Key: "History", Count: 2},
	}, buckets)

	assert.Empty(t, ExtractBuckets("publishers", body), "unknown aggregation name")
	assert.Empty(t, ExtractBuckets("genres", []byte(`{"aggregations"`)), "malformed body")
}

func TestIsAcknowledged(t *testing.T) {
	assert.True(t, IsAcknowledged([]byte(`{"acknowledged": true, "index": "bookindex"}`)))
	assert.False(t, IsAcknowledged([]byte(`{"acknowledged": false}`)))
	assert.False(t, IsAcknowledged([]byte(`{"error": "index exists"}`)))
	assert.False(t, IsAcknowledged([]byte(`{`)))
	assert.False(t, IsAcknowledged(nil))
}

func TestBulkStatuses(t *testing.T) {
	body := []byte(`{
		"errors": true,
		"items": [
			{"create": {"_id": "a", "status": 201}},
			{"create": {"_id": "b", "status": 409}},
			{"create": {"_id": "c", "status": 201}}
		]
	}`)
	assert.Equal(t, []int{201, 409, 201}, BulkStatuses(body))
	assert.Empty(t, BulkStatuses([]byte(`{"errors": false}`)))
	assert.Empty(t, BulkStatuses([]byte(`not json`)))
}

func TestIsValidJSON(t *testing.T) {
	assert.True(t, IsValidJSON(`[{"title": "Neuromancer"}]`))
	assert.True(t, IsValidJSON(`{}`))
	assert.False(t, IsValidJSON(`[{"title": }]`))
	assert.False(t, IsValidJSON(``))
}
