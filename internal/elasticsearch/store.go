package elasticsearch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"

	"github.com/booklab/booksearch/internal/esquery"
)

// statusCreated is the per-item status the bulk endpoint reports for a
// successful create operation.
const statusCreated = 201

// dumpPageSize matches the engine's default page size; the index dump pages
// through results at this size.
const dumpPageSize = 10

// Transport abstracts the raw REST verbs so the store can be exercised
// against a fake backend in tests.
type Transport interface {
	Head(ctx context.Context, path string) int
	Get(ctx context.Context, path string, body []byte) []byte
	Put(ctx context.Context, path string, body []byte) []byte
	Post(ctx context.Context, path string, body []byte) []byte
	Delete(ctx context.Context, path string) []byte
}

var _ Transport = (*Client)(nil)

// Store is the mid-level document API: single and bulk writes, index
// management, and a full-index dump. Identifiers are content hashes, so a
// byte-identical document always lands under the same ID.
type Store struct {
	transport Transport
}

func NewStore(transport Transport) *Store {
	return &Store{transport: transport}
}

// DocumentID returns the MD5 digest of the document's serialized JSON form,
// hex-encoded. Identical field values always produce the same identifier,
// which makes re-inserting identical content an overwrite instead of a
// duplicate. Serialization is field-order stable (single struct), so two
// equal records cannot diverge.
func DocumentID(doc interface{}) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:]), nil
}

// AddDocument serializes the document, computes its content-hash ID, and
// PUTs it into the index. Returns true only if the engine explicitly reports
// the document as created.
func (s *Store) AddDocument(ctx context.Context, index string, doc interface{}) bool {
	if index == "" || doc == nil {
		log.Printf("es: add document: index and document are required")
		return false
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("es: add document: marshal: %v", err)
		return false
	}
	sum := md5.Sum(payload)
	id := hex.EncodeToString(sum[:])
	resp := s.transport.Put(ctx, index+"/_doc/"+id, payload)
	if len(resp) == 0 {
		return false
	}
	result := map[string]interface{}{}
	if err := json.Unmarshal(resp, &result); err != nil {
		log.Printf("es: add document: parse response: %v", err)
		return false
	}
	created, _ := result["result"].(string)
	return created == "created"
}

// BulkAdd writes all documents in one request using the bulk NDJSON format:
// an operation descriptor line followed by the document line, repeated, each
// newline-terminated. Returns true only if the engine reports exactly one
// status per submitted document and every status is a create success. A
// failing batch may still have been partially applied by the engine; the
// per-item statuses are logged, but the result is all-or-nothing.
func (s *Store) BulkAdd(ctx context.Context, index string, docs []interface{}) bool {
	if len(docs) == 0 {
		return false
	}
	var payload strings.Builder
	for _, doc := range docs {
		docJSON, err := json.Marshal(doc)
		if err != nil {
			log.Printf("es: bulk add: marshal: %v", err)
			return false
		}
		sum := md5.Sum(docJSON)
		action, err := json.Marshal(map[string]interface{}{
			"create": map[string]interface{}{
				"_index": index,
				"_id":    hex.EncodeToString(sum[:]),
			},
		})
		if err != nil {
			log.Printf("es: bulk add: marshal action: %v", err)
			return false
		}
		payload.Write(action)
		payload.WriteString("\n")
		payload.Write(docJSON)
		payload.WriteString("\n")
	}
	resp := s.transport.Post(ctx, "_bulk", []byte(payload.String()))
	if len(resp) == 0 {
		return false
	}
	statuses := esquery.BulkStatuses(resp)
	if len(statuses) != len(docs) {
		log.Printf("es: bulk add: %d documents submitted, %d statuses returned", len(docs), len(statuses))
		return false
	}
	ok := true
	for i, status := range statuses {
		if status != statusCreated {
			log.Printf("es: bulk add: item %d failed with status %d", i, status)
			ok = false
		}
	}
	return ok
}

// IndexExists reports whether the index exists (HEAD returns 200).
func (s *Store) IndexExists(ctx context.Context, index string) bool {
	return s.transport.Head(ctx, index) == 200
}

// CreateIndex installs the mapping for a new index. True iff the engine
// acknowledges the creation.
func (s *Store) CreateIndex(ctx context.Context, index string, mapping map[string]interface{}) bool {
	body, err := json.Marshal(mapping)
	if err != nil {
		log.Printf("es: create index %s: marshal mapping: %v", index, err)
		return false
	}
	resp := s.transport.Put(ctx, index, body)
	if !esquery.IsAcknowledged(resp) {
		log.Printf("es: create index %s: not acknowledged", index)
		return false
	}
	return true
}

// DeleteIndex removes the index. True iff the engine acknowledges.
func (s *Store) DeleteIndex(ctx context.Context, index string) bool {
	resp := s.transport.Delete(ctx, index)
	return esquery.IsAcknowledged(resp)
}

// Search sends a query body to the index's search endpoint and returns the
// raw response. The engine expects the payload on a GET.
func (s *Store) Search(ctx context.Context, index string, query esquery.Search) []byte {
	body, err := json.Marshal(query.Body())
	if err != nil {
		log.Printf("es: search %s: marshal query: %v", index, err)
		return nil
	}
	return s.transport.Get(ctx, index+"/_search", body)
}

// DeleteByQuery posts a query to the index's delete-by-query endpoint and
// returns the raw response.
func (s *Store) DeleteByQuery(ctx context.Context, index string, query esquery.Search) []byte {
	body, err := json.Marshal(query.Body())
	if err != nil {
		log.Printf("es: delete by query %s: marshal query: %v", index, err)
		return nil
	}
	return s.transport.Post(ctx, index+"/_delete_by_query", body)
}

// Aggregate posts an aggregation-only query to the search endpoint and
// returns the raw response.
func (s *Store) Aggregate(ctx context.Context, index string, query esquery.Search) []byte {
	body, err := json.Marshal(query.Body())
	if err != nil {
		log.Printf("es: aggregate %s: marshal query: %v", index, err)
		return nil
	}
	return s.transport.Post(ctx, index+"/_search", body)
}

// DumpAll pages through a match-all query at the engine's default page size
// and returns every stored document source as one pretty-printed JSON array
// with a trailing newline. An empty index yields an empty string.
func (s *Store) DumpAll(ctx context.Context, index string) string {
	query := esquery.MatchAllQuery()
	resp := s.Search(ctx, index, query)
	docs, total := esquery.ExtractDocuments(resp)
	collected := docs
	for total > len(collected) {
		remaining := total - len(collected)
		fetchSize := dumpPageSize
		if remaining < fetchSize {
			fetchSize = remaining
		}
		resp = s.Search(ctx, index, query.WithPagination(len(collected), fetchSize))
		page, _ := esquery.ExtractDocuments(resp)
		if len(page) == 0 {
			// no progress; a misbehaving backend must not loop us forever
			log.Printf("es: dump %s: pagination stalled at %d of %d", index, len(collected), total)
			break
		}
		collected = append(collected, page...)
	}
	if len(collected) == 0 {
		return ""
	}
	out, err := json.MarshalIndent(collected, "", "  ")
	if err != nil {
		log.Printf("es: dump %s: marshal: %v", index, err)
		return ""
	}
	return string(out) + "\n"
}
