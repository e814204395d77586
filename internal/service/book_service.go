// Package service is the domain-facing search API: finds, exact-entry
// checks, deletes, aggregation, and bulk import over the book index. It
// composes the query builder, the document store, and the response parser,
// and owns the pagination loop.
package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/booklab/booksearch/internal/elasticsearch"
	"github.com/booklab/booksearch/internal/esquery"
	"github.com/booklab/booksearch/internal/model"
)

// BookSearcher is the interface the HTTP handlers and the Kafka worker
// depend on (and what tests fake).
type BookSearcher interface {
	Save(ctx context.Context, book model.Book) bool
	BulkImport(ctx context.Context, books []model.Book) bool
	FindByTitle(ctx context.Context, title string) []model.Book
	FindByAuthor(ctx context.Context, author string) []model.Book
	FindByTitleAndAuthor(ctx context.Context, title, author string) []model.Book
	FindByGenre(ctx context.Context, genre string) []model.Book
	FindByPublisherKeyword(ctx context.Context, publisher string) []model.Book
	HasExactEntry(ctx context.Context, book model.Book) bool
	DeleteByTitleAuthor(ctx context.Context, title, author string) bool
	ListAll(ctx context.Context) []model.Book
	AggregateByField(ctx context.Context, aggregateName, fieldName string) []esquery.Bucket
}

// Store is the slice of the document store the service uses; satisfied by
// *elasticsearch.Store and by test fakes.
type Store interface {
	AddDocument(ctx context.Context, index string, doc interface{}) bool
	BulkAdd(ctx context.Context, index string, docs []interface{}) bool
	IndexExists(ctx context.Context, index string) bool
	CreateIndex(ctx context.Context, index string, mapping map[string]interface{}) bool
	Search(ctx context.Context, index string, query esquery.Search) []byte
	DeleteByQuery(ctx context.Context, index string, query esquery.Search) []byte
	Aggregate(ctx context.Context, index string, query esquery.Search) []byte
	DumpAll(ctx context.Context, index string) string
}

var _ Store = (*elasticsearch.Store)(nil)

// BookService implements BookSearcher against an Elasticsearch-backed store.
// All operations are synchronous; there are no retries. The only shared
// mutable state is the schema-init flag, guarded below.
type BookService struct {
	store Store
	index string

	// schema init must run at most once per process, and the check-and-create
	// sequence must be atomic under concurrent first use
	schemaMu    sync.Mutex
	schemaReady bool
}

var _ BookSearcher = (*BookService)(nil)

// NewBookService builds a service over a live Elasticsearch endpoint and
// ensures the index schema exists.
func NewBookService(esURL string, skipTLSVerify bool, username, password, index string) *BookService {
	client := elasticsearch.NewClient(esURL, skipTLSVerify, username, password)
	return NewBookServiceWithStore(elasticsearch.NewStore(client), index)
}

// NewBookServiceWithStore builds a service over a given store (e.g. a fake
// for tests) and ensures the index schema exists.
func NewBookServiceWithStore(store Store, index string) *BookService {
	svc := &BookService{store: store, index: index}
	if !svc.EnsureSchema(context.Background()) {
		log.Printf("service: could not ensure index %q at startup; writes will retry", index)
	}
	return svc
}

// Index returns the name of the backing index.
func (s *BookService) Index() string {
	return s.index
}

// EnsureSchema installs the book mapping if the index does not exist yet.
// Idempotent and safe under concurrent callers; once the schema is known to
// exist the check is a flag read under the lock, no network round trip.
func (s *BookService) EnsureSchema(ctx context.Context) bool {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return true
	}
	if s.store.IndexExists(ctx, s.index) {
		s.schemaReady = true
		return true
	}
	if !s.store.CreateIndex(ctx, s.index, elasticsearch.BooksMapping()) {
		return false
	}
	s.schemaReady = true
	return true
}

// Save writes one book under its content-hash identifier. The author sort
// key is derived here so every stored document carries it. Returns false if
// the engine does not confirm the create.
func (s *BookService) Save(ctx context.Context, book model.Book) bool {
	if !s.EnsureSchema(ctx) {
		return false
	}
	book.SetAuthorSortKey()
	ok := s.store.AddDocument(ctx, s.index, book)
	if !ok {
		log.Printf("service: could not write book %q to the index", book.Title)
	}
	return ok
}

// BulkImport writes all books in one bulk request. All-or-nothing: false if
// any item fails, even though the engine may have applied part of the batch.
func (s *BookService) BulkImport(ctx context.Context, books []model.Book) bool {
	if !s.EnsureSchema(ctx) {
		return false
	}
	docs := make([]interface{}, len(books))
	for i, book := range books {
		// the sort key is derived on a copy; the caller's slice stays untouched
		book.SetAuthorSortKey()
		docs[i] = book
	}
	return s.store.BulkAdd(ctx, s.index, docs)
}

// FindByTitle matches one or more title words, scored by relevance.
func (s *BookService) FindByTitle(ctx context.Context, title string) []model.Book {
	return s.search(ctx, esquery.MatchQuery("title", title))
}

// FindByAuthor matches an author name. Scoring is irrelevant for a
// match/no-match lookup, so this uses a non-scoring filter.
func (s *BookService) FindByAuthor(ctx context.Context, author string) []model.Book {
	return s.search(ctx, esquery.FilterQuery("author", author))
}

// FindByTitleAndAuthor requires both fields to match; generally returns a
// single book.
func (s *BookService) FindByTitleAndAuthor(ctx context.Context, title, author string) []model.Book {
	return s.search(ctx, esquery.FilterConjunction(
		esquery.Match{Field: "title", Value: title},
		esquery.Match{Field: "author", Value: author},
	))
}

// FindByGenre matches a genre, sorted author-surname then title.
func (s *BookService) FindByGenre(ctx context.Context, genre string) []model.Book {
	return s.search(ctx, esquery.GenreQuery(genre))
}

// FindByPublisherKeyword matches the exact publisher string, sorted
// author-surname then title.
func (s *BookService) FindByPublisherKeyword(ctx context.Context, publisher string) []model.Book {
	return s.search(ctx, esquery.PublisherKeywordQuery(publisher))
}

// HasExactEntry reports whether a document matching every field of the book
// is already stored. Used to avoid duplicate inserts before a write.
func (s *BookService) HasExactEntry(ctx context.Context, book model.Book) bool {
	hits := s.search(ctx, esquery.FilterConjunction(
		esquery.Match{Field: "title", Value: book.Title},
		esquery.Match{Field: "author", Value: book.Author},
		esquery.Match{Field: "publisher", Value: book.Publisher},
		esquery.Match{Field: "genre", Value: book.Genre},
		esquery.Match{Field: "year", Value: book.Year},
		esquery.Match{Field: "price", Value: book.Price},
	))
	return len(hits) > 0
}

// DeleteByTitleAuthor removes documents matching the title/author pair via
// delete-by-query. True iff the engine reports at least one deletion; a
// missing or malformed response counts as nothing deleted.
func (s *BookService) DeleteByTitleAuthor(ctx context.Context, title, author string) bool {
	query := esquery.FilterConjunction(
		esquery.Match{Field: "title", Value: title},
		esquery.Match{Field: "author", Value: author},
	)
	resp := s.store.DeleteByQuery(ctx, s.index, query)
	if len(resp) == 0 {
		log.Printf("service: delete by title/author returned no result")
		return false
	}
	result := map[string]interface{}{}
	if err := json.Unmarshal(resp, &result); err != nil {
		log.Printf("service: delete by title/author: parse response: %v", err)
		return false
	}
	deleted, _ := result["deleted"].(float64)
	return int(deleted) >= 1
}

// ListAll returns every book in the index, sorted by genre.
func (s *BookService) ListAll(ctx context.Context) []model.Book {
	return s.search(ctx, esquery.MatchAllQuery())
}

// AggregateByField runs a bucket terms aggregation over a keyword field.
// The aggregate name is arbitrary and only keys the response subtree.
func (s *BookService) AggregateByField(ctx context.Context, aggregateName, fieldName string) []esquery.Bucket {
	query := esquery.BucketTermsAggregate(aggregateName, fieldName)
	resp := s.store.Aggregate(ctx, s.index, query)
	return esquery.ExtractBuckets(aggregateName, resp)
}

// Dump returns the whole index as a pretty-printed JSON array.
func (s *BookService) Dump(ctx context.Context) string {
	return s.store.DumpAll(ctx, s.index)
}

// search runs the query and pages through the result set. The first request
// goes out unmodified; while the reported total exceeds what has been
// collected, the query is re-issued with from/size covering the remainder,
// capped at the engine's per-request maximum. The loop aborts if an
// iteration makes no progress so an inconsistent backend cannot stall it
// forever; if the backend revises the total mid-loop, the latest report
// wins.
func (s *BookService) search(ctx context.Context, query esquery.Search) []model.Book {
	resp := s.store.Search(ctx, s.index, query)
	docs, total := esquery.ExtractDocuments(resp)
	// pre-allocate from what actually arrived; the reported total is not
	// trusted for sizing
	books := make([]model.Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, bookFromSource(doc))
	}
	for total > len(books) {
		remaining := total - len(books)
		fetchSize := remaining
		if fetchSize > esquery.PageCeiling {
			fetchSize = esquery.PageCeiling
		}
		resp = s.store.Search(ctx, s.index, query.WithPagination(len(books), fetchSize))
		page, pageTotal := esquery.ExtractDocuments(resp)
		if len(page) == 0 {
			log.Printf("service: pagination stalled at %d of %d results", len(books), total)
			break
		}
		for _, doc := range page {
			books = append(books, bookFromSource(doc))
		}
		if pageTotal > 0 {
			total = pageTotal
		}
	}
	return books
}

func bookFromSource(src map[string]interface{}) model.Book {
	b := model.Book{}
	if v, ok := src["title"].(string); ok {
		b.Title = v
	}
	if v, ok := src["author"].(string); ok {
		b.Author = v
	}
	if v, ok := src["author_last_name"].(string); ok {
		b.AuthorLastName = v
	}
	if v, ok := src["genre"].(string); ok {
		b.Genre = v
	}
	if v, ok := src["publisher"].(string); ok {
		b.Publisher = v
	}
	if v, ok := src["year"].(string); ok {
		b.Year = v
	}
	if v, ok := src["price"].(string); ok {
		b.Price = v
	}
	return b
}
