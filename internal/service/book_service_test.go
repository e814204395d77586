package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklab/booksearch/internal/elasticsearch"
	"github.com/booklab/booksearch/internal/esquery"
	"github.com/booklab/booksearch/internal/model"
)

// fakeStore is an in-memory stand-in for the Elasticsearch-backed store. It
// evaluates the serialized query bodies the way the engine would: analyzed
// match fields compare case-insensitive tokens, .keyword fields compare
// exactly, bool filters are conjunctions, and unsized searches return the
// engine's default page of 10.
type fakeStore struct {
	entries []storedBook
	ids     map[string]int

	exists      bool
	createOK    bool
	existsCalls int
	createCalls int
	searchCalls int
	addCalls    int
}

type storedBook struct {
	id   string
	book model.Book
}

func newFakeStore() *fakeStore {
	return &fakeStore{ids: map[string]int{}, exists: true, createOK: true}
}

func (f *fakeStore) AddDocument(ctx context.Context, index string, doc interface{}) bool {
	f.addCalls++
	book, ok := doc.(model.Book)
	if !ok {
		return false
	}
	id, err := elasticsearch.DocumentID(book)
	if err != nil {
		return false
	}
	if _, dup := f.ids[id]; dup {
		// overwrite of identical content reports "updated", not "created"
		return false
	}
	f.ids[id] = len(f.entries)
	f.entries = append(f.entries, storedBook{id: id, book: book})
	return true
}

func (f *fakeStore) BulkAdd(ctx context.Context, index string, docs []interface{}) bool {
	ok := true
	for _, doc := range docs {
		if !f.AddDocument(ctx, index, doc) {
			ok = false
		}
		f.addCalls--
	}
	return ok
}

func (f *fakeStore) IndexExists(ctx context.Context, index string) bool {
	f.existsCalls++
	return f.exists
}

func (f *fakeStore) CreateIndex(ctx context.Context, index string, mapping map[string]interface{}) bool {
	f.createCalls++
	if f.createOK {
		f.exists = true
	}
	return f.createOK
}

func (f *fakeStore) Search(ctx context.Context, index string, query esquery.Search) []byte {
	f.searchCalls++
	body := query.Body()

	matched := []model.Book{}
	for _, e := range f.entries {
		if evalQuery(body["query"], e.book) {
			matched = append(matched, e.book)
		}
	}
	sortBooks(matched, body["sort"])

	from, size := 0, 10
	if v, ok := body["from"].(int); ok {
		from = v
	}
	if v, ok := body["size"].(int); ok {
		size = v
	}
	total := len(matched)
	if from > total {
		from = total
	}
	end := from + size
	if end > total {
		end = total
	}

	hits := make([]map[string]interface{}, 0, end-from)
	for _, b := range matched[from:end] {
		hits = append(hits, map[string]interface{}{"_source": b})
	}
	resp, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": total},
			"hits":  hits,
		},
	})
	return resp
}

func (f *fakeStore) DeleteByQuery(ctx context.Context, index string, query esquery.Search) []byte {
	body := query.Body()
	kept := f.entries[:0]
	deleted := 0
	for _, e := range f.entries {
		if evalQuery(body["query"], e.book) {
			delete(f.ids, e.id)
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	f.ids = map[string]int{}
	for i, e := range f.entries {
		f.ids[e.id] = i
	}
	return []byte(fmt.Sprintf(`{"deleted": %d}`, deleted))
}

func (f *fakeStore) Aggregate(ctx context.Context, index string, query esquery.Search) []byte {
	body := query.Body()
	aggs, _ := body["aggs"].(map[string]interface{})
	result := map[string]interface{}{}
	for name, raw := range aggs {
		spec, _ := raw.(map[string]interface{})
		terms, _ := spec["terms"].(map[string]interface{})
		field, _ := terms["field"].(string)
		counts := map[string]int{}
		for _, e := range f.entries {
			counts[fieldText(e.book, field)]++
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buckets := make([]map[string]interface{}, 0, len(keys))
		for _, k := range keys {
			buckets = append(buckets, map[string]interface{}{"key": k, "doc_count": counts[k]})
		}
		result[name] = map[string]interface{}{"buckets": buckets}
	}
	resp, _ := json.Marshal(map[string]interface{}{
		"hits":         map[string]interface{}{"total": map[string]interface{}{"value": len(f.entries)}},
		"aggregations": result,
	})
	return resp
}

func (f *fakeStore) DumpAll(ctx context.Context, index string) string { return "" }

func evalQuery(q interface{}, b model.Book) bool {
	node, ok := q.(map[string]interface{})
	if !ok {
		return false
	}
	if _, ok := node["match_all"]; ok {
		return true
	}
	if m, ok := node["match"].(map[string]interface{}); ok {
		for field, v := range m {
			value, _ := v.(string)
			return fieldMatches(b, field, value)
		}
	}
	if boolNode, ok := node["bool"].(map[string]interface{}); ok {
		switch filter := boolNode["filter"].(type) {
		case map[string]interface{}:
			return evalQuery(filter, b)
		case []map[string]interface{}:
			for _, sub := range filter {
				if !evalQuery(sub, b) {
					return false
				}
			}
			return true
		case []interface{}:
			for _, sub := range filter {
				if !evalQuery(sub, b) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func fieldMatches(b model.Book, field, value string) bool {
	if strings.HasSuffix(field, ".keyword") {
		return fieldText(b, field) == value
	}
	docTokens := strings.Fields(strings.ToLower(fieldText(b, field)))
	for _, want := range strings.Fields(strings.ToLower(value)) {
		found := false
		for _, tok := range docTokens {
			if tok == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(value) > 0
}

func fieldText(b model.Book, field string) string {
	switch strings.TrimSuffix(field, ".keyword") {
	case "title":
		return b.Title
	case "author":
		return b.Author
	case "author_last_name":
		return b.AuthorLastName
	case "genre":
		return b.Genre
	case "publisher":
		return b.Publisher
	case "year":
		return b.Year
	case "price":
		return b.Price
	}
	return ""
}

func sortBooks(books []model.Book, sortSpec interface{}) {
	clauses, ok := sortSpec.([]map[string]interface{})
	if !ok || len(clauses) == 0 {
		return
	}
	fields := make([]string, 0, len(clauses))
	for _, c := range clauses {
		for field := range c {
			fields = append(fields, field)
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		for _, field := range fields {
			a, b := fieldText(books[i], field), fieldText(books[j], field)
			if a != b {
				return a < b
			}
		}
		return false
	})
}

var fixture = []model.Book{
	{Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction", Publisher: "Ace", Year: "1984", Price: "14.77"},
	{Title: "Count Zero", Author: "William Gibson", Genre: "Science Fiction", Publisher: "Arbor House", Year: "1986", Price: "12.50"},
	{Title: "Revelation Space", Author: "Alastair Reynolds", Genre: "Science Fiction", Publisher: "Gollancz", Year: "2000", Price: "18.00"},
	{Title: "Chasm City", Author: "Alastair Reynolds", Genre: "Science Fiction", Publisher: "Gollancz", Year: "2001", Price: "16.25"},
	{Title: "Rubicon", Author: "Tom Holland", Genre: "History", Publisher: "Anchor", Year: "2003", Price: "17.95"},
}

func newTestService(t *testing.T) (*BookService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewBookServiceWithStore(store, "bookindex")
	return svc, store
}

func importFixture(t *testing.T, svc *BookService) {
	t.Helper()
	books := make([]model.Book, len(fixture))
	copy(books, fixture)
	require.True(t, svc.BulkImport(context.Background(), books))
}

func TestSaveThenHasExactEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	book := fixture[0]
	assert.False(t, svc.HasExactEntry(ctx, book))
	require.True(t, svc.Save(ctx, book))
	assert.True(t, svc.HasExactEntry(ctx, book))

	changed := book
	changed.Price = "9.99"
	assert.False(t, svc.HasExactEntry(ctx, changed), "any differing field is a different entry")
}

func TestSaveDerivesAuthorSortKey(t *testing.T) {
	svc, store := newTestService(t)
	require.True(t, svc.Save(context.Background(), fixture[0]))
	require.Len(t, store.entries, 1)
	assert.Equal(t, "Gibson,William", store.entries[0].book.AuthorLastName)
}

func TestBulkImportThenListAll(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)

	listed := svc.ListAll(context.Background())
	require.Len(t, listed, len(fixture))
	for _, want := range fixture {
		found := false
		for _, got := range listed {
			if got.Equal(want) {
				found = true
				break
			}
		}
		assert.True(t, found, "missing %q", want.Title)
	}
}

func TestFindByAuthorMatchesNameTokens(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)
	ctx := context.Background()

	reynolds := svc.FindByAuthor(ctx, "reynolds")
	require.Len(t, reynolds, 2)
	for _, b := range reynolds {
		assert.Equal(t, "Alastair Reynolds", b.Author)
	}

	gibson := svc.FindByAuthor(ctx, "GIBSON")
	assert.Len(t, gibson, 2)

	assert.Empty(t, svc.FindByAuthor(ctx, "herbert"))
}

func TestFindByTitleAndAuthor(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)
	ctx := context.Background()

	hits := svc.FindByTitleAndAuthor(ctx, "Neuromancer", "William Gibson")
	require.Len(t, hits, 1)
	assert.True(t, hits[0].Equal(fixture[0]))

	assert.Empty(t, svc.FindByTitleAndAuthor(ctx, "Neuromancer", "Alastair Reynolds"))
}

func TestFindByGenreSorted(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)

	scifi := svc.FindByGenre(context.Background(), "Science Fiction")
	require.Len(t, scifi, 4)
	// author surname first, then title
	assert.Equal(t, "Count Zero", scifi[0].Title)
	assert.Equal(t, "Neuromancer", scifi[1].Title)
	assert.Equal(t, "Chasm City", scifi[2].Title)
	assert.Equal(t, "Revelation Space", scifi[3].Title)
}

func TestFindByPublisherKeywordIsExact(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)
	ctx := context.Background()

	assert.Len(t, svc.FindByPublisherKeyword(ctx, "Gollancz"), 2)
	assert.Empty(t, svc.FindByPublisherKeyword(ctx, "gollancz"), "keyword match is case-sensitive")
	assert.Empty(t, svc.FindByPublisherKeyword(ctx, "Ace Books"))
}

func TestDeleteByTitleAuthor(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)
	ctx := context.Background()

	require.True(t, svc.DeleteByTitleAuthor(ctx, "Neuromancer", "William Gibson"))
	assert.Empty(t, svc.FindByTitleAndAuthor(ctx, "Neuromancer", "William Gibson"))
	assert.Len(t, svc.ListAll(ctx), len(fixture)-1)

	assert.False(t, svc.DeleteByTitleAuthor(ctx, "Neuromancer", "William Gibson"),
		"nothing left to delete")
}

func TestListAllPaginatesPastDefaultPage(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	books := make([]model.Book, 23)
	for i := range books {
		books[i] = model.Book{
			Title:  fmt.Sprintf("Volume %02d", i),
			Author: "Edward Gibbon",
			Genre:  "History",
			Year:   "1776",
			Price:  "20.00",
		}
	}
	require.True(t, svc.BulkImport(ctx, books))

	store.searchCalls = 0
	listed := svc.ListAll(ctx)

	require.Len(t, listed, 23)
	assert.Equal(t, 2, store.searchCalls,
		"default first page of 10, then one fetch for the remaining 13")

	titles := map[string]bool{}
	for _, b := range listed {
		titles[b.Title] = true
	}
	assert.Len(t, titles, 23, "no duplicates across pages")
}

// rawStore serves canned search bytes so adversarial backend responses can be
// replayed against the service.
type rawStore struct {
	fakeStore
	searchResp  []byte
	searchCalls int
}

func (r *rawStore) Search(ctx context.Context, index string, query esquery.Search) []byte {
	r.searchCalls++
	return r.searchResp
}

func TestSearchToleratesNegativeTotal(t *testing.T) {
	store := &rawStore{searchResp: []byte(`{"hits": {"total": -3, "hits": []}}`)}
	store.exists = true
	svc := NewBookServiceWithStore(store, "bookindex")

	books := svc.FindByTitle(context.Background(), "neuromancer")
	assert.Empty(t, books, "a malformed total degrades to no results")
	assert.Equal(t, 1, store.searchCalls, "no pagination on a malformed total")
}

func TestSearchToleratesInflatedTotal(t *testing.T) {
	// backend claims an absurd total but never delivers a document; the
	// progress guard must end the loop after one follow-up fetch
	store := &rawStore{searchResp: []byte(`{"hits": {"total": 1000000000000, "hits": []}}`)}
	store.exists = true
	svc := NewBookServiceWithStore(store, "bookindex")

	books := svc.ListAll(context.Background())
	assert.Empty(t, books)
	assert.Equal(t, 2, store.searchCalls)
}

func TestBulkImportDoesNotMutateInput(t *testing.T) {
	svc, _ := newTestService(t)

	books := []model.Book{fixture[0], fixture[1]}
	require.True(t, svc.BulkImport(context.Background(), books))

	assert.Empty(t, books[0].AuthorLastName, "caller's records stay as passed")
	assert.Empty(t, books[1].AuthorLastName)
}

func TestAggregateByField(t *testing.T) {
	svc, _ := newTestService(t)
	importFixture(t, svc)

	buckets := svc.AggregateByField(context.Background(), "genres", "genre")
	require.Len(t, buckets, 2)
	assert.Equal(t, esquery.Bucket{Key: "History", Count: 1}, buckets[0])
	assert.Equal(t, esquery.Bucket{Key: "Science Fiction", Count: 4}, buckets[1])

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, len(fixture), total, "bucket counts sum to the document count")
}

func TestEnsureSchemaRunsOnce(t *testing.T) {
	store := newFakeStore()
	store.exists = false
	svc := NewBookServiceWithStore(store, "bookindex")

	assert.Equal(t, 1, store.createCalls, "created at startup")

	ctx := context.Background()
	require.True(t, svc.Save(ctx, fixture[0]))
	require.True(t, svc.Save(ctx, fixture[1]))
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, store.existsCalls, "ready flag short-circuits the existence check")
}

func TestSaveFailsWithoutSchema(t *testing.T) {
	store := newFakeStore()
	store.exists = false
	store.createOK = false
	svc := NewBookServiceWithStore(store, "bookindex")

	assert.False(t, svc.Save(context.Background(), fixture[0]))
	assert.Equal(t, 0, store.addCalls, "no write without a schema")
}
