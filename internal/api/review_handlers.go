package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediavault/mediavault-server/internal/http/response"
)

// ReviewDecisionRequest is the body for a manual review decision.
type ReviewDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=500"`
}

func (s *Server) handleListReviewQueue(w http.ResponseWriter, r *http.Request) {
	page, err := s.assets.ListReviewQueue(r.Context(), paginationFromQuery(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, page, s.logger)
}

func (s *Server) handleReviewDecision(w http.ResponseWriter, r *http.Request) {
	var req ReviewDecisionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	asset, err := s.assets.Review(r.Context(), chi.URLParam(r, "id"), req.Decision == "approve", req.Reason)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, asset, s.logger)
}
