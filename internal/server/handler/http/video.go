package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/service"
)

// VideoService finds the explainer video for a question.
type VideoService interface {
	Search(ctx context.Context, text string) (*service.VideoMatch, error)
}

// VideoHandler serves the video lookup endpoint.
type VideoHandler struct {
	VideoService VideoService
	Log          *zap.Logger
}

// Search handles GET /api/videos/search?q=.
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	match, err := h.VideoService.Search(r.Context(), q)
	switch {
	case errors.Is(err, service.ErrNoVideoMatch), errors.Is(err, service.ErrSchemeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.Log.Error("video search failed", zap.String("q", q), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, match)
	}
}
