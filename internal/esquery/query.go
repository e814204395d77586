// Package esquery builds Elasticsearch query-DSL bodies and extracts results
// from query responses. Everything in this package is pure: no I/O, no shared
// state. Queries are small trees of tagged expression values with a single
// serialization function (Search.Body), so a new query shape is a new variant,
// not a new generator.
package esquery

// PageCeiling is the engine's per-request result maximum. Paginated fetch
// loops must never request more than this in one call.
const PageCeiling = 10000

// maxBuckets is the engine's hard cap on term-aggregation buckets. The terms
// aggregate asks for exactly this many so that an exhaustive listing is
// returned instead of the engine's small default.
const maxBuckets = 10000

// Expr is one node of a query expression tree.
type Expr interface {
	body() map[string]interface{}
}

// Match requires a field to match a value, scored by relevance.
type Match struct {
	Field string
	Value string
}

func (m Match) body() map[string]interface{} {
	return map[string]interface{}{
		"match": map[string]interface{}{m.Field: m.Value},
	}
}

// MatchAll matches every document.
type MatchAll struct{}

func (MatchAll) body() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

// Filter wraps an expression in a non-scoring bool filter. The result score
// is always zero; the engine may cache the filter.
type Filter struct {
	Expr Expr
}

func (f Filter) body() map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{"filter": f.Expr.body()},
	}
}

// FilterAll is the conjunction (logical AND) of N non-scoring filters.
type FilterAll struct {
	Exprs []Expr
}

func (f FilterAll) body() map[string]interface{} {
	filters := make([]map[string]interface{}, 0, len(f.Exprs))
	for _, e := range f.Exprs {
		filters = append(filters, e.body())
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{"filter": filters},
	}
}

// Sort is one sort clause; Order is "asc" or "desc".
type Sort struct {
	Field string
	Order string
}

// TermsAgg is a bucket terms aggregation on a keyword field, ordered
// ascending by bucket key.
type TermsAgg struct {
	Name  string
	Field string
}

// Search is the top-level query envelope. The zero value is an empty body.
// Search is a value type: WithPagination returns a modified copy and never
// mutates its receiver, so a base query can be re-paginated safely.
type Search struct {
	Query Expr
	Sorts []Sort
	Aggs  []TermsAgg

	// ZeroHits suppresses document hits (size 0); used by aggregation-only
	// queries.
	ZeroHits bool

	from  int
	size  int
	paged bool
}

// WithPagination returns a copy of the query with from/size merged in. All
// other fields of the query are preserved unchanged.
func (s Search) WithPagination(from, size int) Search {
	s.from = from
	s.size = size
	s.paged = true
	return s
}

// Body serializes the query tree to the engine's JSON shape.
func (s Search) Body() map[string]interface{} {
	body := map[string]interface{}{}
	if s.paged {
		body["from"] = s.from
		body["size"] = s.size
	}
	if s.ZeroHits {
		body["size"] = 0
	}
	if s.Query != nil {
		body["query"] = s.Query.body()
	}
	if len(s.Sorts) > 0 {
		sorts := make([]map[string]interface{}, 0, len(s.Sorts))
		for _, so := range s.Sorts {
			sorts = append(sorts, map[string]interface{}{
				so.Field: map[string]interface{}{"order": so.Order},
			})
		}
		body["sort"] = sorts
	}
	if len(s.Aggs) > 0 {
		aggs := map[string]interface{}{}
		for _, a := range s.Aggs {
			aggs[a.Name] = map[string]interface{}{
				"terms": map[string]interface{}{
					"field": a.Field,
					"size":  maxBuckets,
					"order": map[string]interface{}{"_key": "asc"},
				},
			}
		}
		body["aggs"] = aggs
	}
	return body
}

// MatchQuery builds a scored single-field match query.
func MatchQuery(field, value string) Search {
	return Search{Query: Match{Field: field, Value: value}}
}

// FilterQuery builds a non-scoring single-field filter query. Same match
// semantics as MatchQuery, but the engine skips score calculation.
func FilterQuery(field, value string) Search {
	return Search{Query: Filter{Expr: Match{Field: field, Value: value}}}
}

// FilterConjunction builds the AND of the given field filters; used for
// exact multi-field lookups such as title+author.
func FilterConjunction(matches ...Match) Search {
	exprs := make([]Expr, len(matches))
	for i, m := range matches {
		exprs[i] = m
	}
	return Search{Query: FilterAll{Exprs: exprs}}
}

// BucketTermsAggregate builds a zero-hit aggregation-only query that returns
// every distinct term bucket for the field, sorted ascending by key.
func BucketTermsAggregate(name, field string) Search {
	return Search{
		ZeroHits: true,
		Aggs:     []TermsAgg{{Name: name, Field: field}},
	}
}

// MatchAllQuery returns every document, sorted by genre ascending.
func MatchAllQuery() Search {
	return Search{
		Query: MatchAll{},
		Sorts: []Sort{{Field: "genre", Order: "asc"}},
	}
}

// byAuthorThenTitle is the display order for field-specific listings.
var byAuthorThenTitle = []Sort{
	{Field: "author_last_name", Order: "asc"},
	{Field: "title.keyword", Order: "asc"},
}

// GenreQuery matches a genre, sorted author-surname then title.
func GenreQuery(genre string) Search {
	return Search{
		Query: Match{Field: "genre", Value: genre},
		Sorts: byAuthorThenTitle,
	}
}

// PublisherKeywordQuery matches the exact publisher keyword, sorted
// author-surname then title.
func PublisherKeywordQuery(publisher string) Search {
	return Search{
		Query: Match{Field: "publisher.keyword", Value: publisher},
		Sorts: byAuthorThenTitle,
	}
}
