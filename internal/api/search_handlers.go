package api

import (
	"net/http"
	"strings"

	"github.com/mediavault/mediavault-server/internal/http/response"
	"github.com/mediavault/mediavault-server/internal/search"
)

// handleSearch executes a search query. Supported query parameters:
// q, group, tag, extension, review_status, preview_status, min_size,
// max_size, sort, order, limit, offset, facets.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := search.DefaultParams()
	params.Query = strings.TrimSpace(q.Get("q"))
	params.Groups = csvQueryParam(q.Get("group"))
	params.Tags = csvQueryParam(q.Get("tag"))
	params.Extensions = csvQueryParam(q.Get("extension"))
	params.ReviewStatus = q.Get("review_status")
	params.PreviewStatus = q.Get("preview_status")
	params.MinSize = int64(intQueryParam(r, "min_size", 0))
	params.MaxSize = int64(intQueryParam(r, "max_size", 0))
	params.IncludeFacets = q.Get("facets") != "false"

	if sort := q.Get("sort"); sort != "" {
		params.SortBy = sort
	}
	if order := q.Get("order"); order != "" {
		params.SortOrder = order
	}
	if limit := intQueryParam(r, "limit", 0); limit > 0 && limit <= 100 {
		params.Limit = limit
	}
	if offset := intQueryParam(r, "offset", 0); offset > 0 {
		params.Offset = offset
	}

	result, err := s.search.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// handleReindex rebuilds the search index from the store.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.search.ReindexAll(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]int{"indexed": count}, s.logger)
}

func csvQueryParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
