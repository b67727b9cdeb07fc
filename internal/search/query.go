package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// ExpandedTerms are taxonomy expansions of Query: the canonical term
	// behind a synonym plus that term's other raw variants. They match the
	// tags field so "hamburger" finds assets tagged "burger". The caller
	// supplies them from the taxonomy snapshot; empty means no expansion.
	ExpandedTerms []string

	// Filters
	Groups        []string // Filter by exact group codes
	Tags          []string // Filter by exact tag labels
	Extensions    []string // Filter by file extension
	ReviewStatus  string   // Filter by review workflow state
	PreviewStatus string   // Filter by preview outcome
	MinSize       int64    // Minimum file size in bytes
	MaxSize       int64    // Maximum file size in bytes

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent", "size"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"group", "tags"},
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit represents a single search result.
type Hit struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	Name          string            `json:"name"`
	Group         string            `json:"group,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Extension     string            `json:"extension,omitempty"`
	MimeType      string            `json:"mime_type,omitempty"`
	ReviewStatus  string            `json:"review_status,omitempty"`
	PreviewStatus string            `json:"preview_status,omitempty"`
	FileSize      int64             `json:"file_size,omitempty"`
	Highlights    map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts.
type Facets struct {
	Groups []FacetCount `json:"groups,omitempty"`
	Tags   []FacetCount `json:"tags,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("description")
	}

	searchRequest.Fields = []string{
		"id", "name", "group", "tags", "extension", "mime_type",
		"review_status", "preview_status", "file_size",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if g, ok := hit.Fields["group"].(string); ok {
			searchHit.Group = g
		}
		searchHit.Tags = stringsField(hit.Fields["tags"])
		if e, ok := hit.Fields["extension"].(string); ok {
			searchHit.Extension = e
		}
		if m, ok := hit.Fields["mime_type"].(string); ok {
			searchHit.MimeType = m
		}
		if r, ok := hit.Fields["review_status"].(string); ok {
			searchHit.ReviewStatus = r
		}
		if p, ok := hit.Fields["preview_status"].(string); ok {
			searchHit.PreviewStatus = p
		}
		if fs, ok := hit.Fields["file_size"].(float64); ok {
			searchHit.FileSize = int64(fs)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// stringsField normalizes a stored field that Bleve returns as either a
// single string or a []interface{} of strings.
func stringsField(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query. The filename gets the highest boost, then exact tag
	// matches on the raw query and its taxonomy expansions, then the
	// description. Fuzzy and prefix variants on the name give typo
	// tolerance and autocomplete behavior.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		tagTerm := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(params.Query)))
		tagTerm.SetField("tags")
		tagTerm.SetBoost(2.5)
		textQueries = append(textQueries, tagTerm)

		for _, term := range params.ExpandedTerms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" || term == strings.ToLower(params.Query) {
				continue
			}
			tq := bleve.NewTermQuery(term)
			tq.SetField("tags")
			tq.SetBoost(2.0)
			textQueries = append(textQueries, tq)
		}

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(1.5)
		textQueries = append(textQueries, descMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Group filter (exact match, OR across codes)
	if len(params.Groups) > 0 {
		groupQueries := make([]query.Query, len(params.Groups))
		for i, code := range params.Groups {
			gq := bleve.NewTermQuery(code)
			gq.SetField("group")
			groupQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(groupQueries...))
	}

	// Tag filter (exact match, OR across labels)
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, label := range params.Tags {
			tq := bleve.NewTermQuery(strings.ToLower(label))
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Extension filter
	if len(params.Extensions) > 0 {
		extQueries := make([]query.Query, len(params.Extensions))
		for i, ext := range params.Extensions {
			eq := bleve.NewTermQuery(strings.ToLower(ext))
			eq.SetField("extension")
			extQueries[i] = eq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(extQueries...))
	}

	if params.ReviewStatus != "" {
		rq := bleve.NewTermQuery(params.ReviewStatus)
		rq.SetField("review_status")
		queries = append(queries, rq)
	}

	if params.PreviewStatus != "" {
		pq := bleve.NewTermQuery(params.PreviewStatus)
		pq.SetField("preview_status")
		queries = append(queries, pq)
	}

	// File size range filter
	if params.MinSize > 0 || params.MaxSize > 0 {
		min := float64(params.MinSize)
		max := float64(params.MaxSize)
		if params.MaxSize == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("file_size")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"ingested_at"})
		} else {
			req.SortBy([]string{"-ingested_at"})
		}
	case "size":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"file_size"})
		} else {
			req.SortBy([]string{"-file_size"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params Params) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if groupFacet, ok := result.Facets["group"]; ok {
		for _, term := range groupFacet.Terms.Terms() {
			facets.Groups = append(facets.Groups, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if tagFacet, ok := result.Facets["tags"]; ok {
		for _, term := range tagFacet.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
