package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/http/response"
	"github.com/mediavault/mediavault-server/internal/store"
)

// handleListAssets returns a page of assets. Supported query parameters:
// group, pipeline_status, review_status, limit, cursor.
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.AssetFilter{
		GroupCode:      q.Get("group"),
		PipelineStatus: domain.PipelineStatus(q.Get("pipeline_status")),
		ReviewStatus:   domain.ReviewStatus(q.Get("review_status")),
	}
	params := paginationFromQuery(r)

	page, err := s.assets.ListAssets(r.Context(), filter, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, page, s.logger)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	detail, err := s.assets.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, detail, s.logger)
}

func (s *Server) handleGetAssetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.assets.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"pipeline_status": string(status)}, s.logger)
}

func (s *Server) handleCancelAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.assets.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"pipeline_status": string(domain.PipelineCancelled)}, s.logger)
}

func (s *Server) handleRetagAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	if err := s.assets.Retag(r.Context(), assetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	detail, err := s.assets.GetAsset(r.Context(), assetID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, detail, s.logger)
}

func (s *Server) handleDeleteAssetTag(w http.ResponseWriter, r *http.Request) {
	err := s.assets.DeleteTag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tagID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleAssetActivity(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 0)
	acts, err := s.activities.ListForAsset(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, acts, s.logger)
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 0)
	acts, err := s.activities.ListRecent(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, acts, s.logger)
}

func paginationFromQuery(r *http.Request) store.PaginationParams {
	params := store.DefaultPaginationParams()
	if limit := intQueryParam(r, "limit", 0); limit > 0 {
		params.Limit = limit
	}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		params.Cursor = cursor
	}
	return params
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
