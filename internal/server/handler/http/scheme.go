package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/service"
)

// SchemeService defines the scheme queries required by the HTTP handlers.
type SchemeService interface {
	ListByCategory(ctx context.Context, category string, page service.Page) ([]models.Scheme, error)
	ListAll(ctx context.Context, page service.Page) ([]models.Scheme, error)
	GetByID(ctx context.Context, id string) (*models.Scheme, error)
	Tiles(ctx context.Context) ([]models.CategoryTile, error)
}

// SchemeHandler serves the read-only scheme endpoints.
type SchemeHandler struct {
	SchemeService SchemeService
	Log           *zap.Logger
}

// List handles GET /api/schemes.
//
// Query parameters:
//
//	category - a category key or label; omitted means every scheme
//	q        - case-insensitive filter on title and description
//	limit    - page size, 0 or omitted for all rows
//	offset   - rows to skip
func (h *SchemeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePage(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var schemes []models.Scheme
	if category := q.Get("category"); category != "" {
		if c, ok := models.ParseCategory(category); ok {
			category = c.Label()
		}
		schemes, err = h.SchemeService.ListByCategory(r.Context(), category, page)
	} else {
		schemes, err = h.SchemeService.ListAll(r.Context(), page)
	}
	if err != nil {
		h.Log.Error("failed to list schemes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if query := q.Get("q"); query != "" {
		schemes = service.Search(schemes, query)
	}
	if schemes == nil {
		schemes = []models.Scheme{}
	}
	writeJSON(w, http.StatusOK, schemes)
}

// Get handles GET /api/schemes/{id}.
func (h *SchemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, err := h.SchemeService.GetByID(r.Context(), id)
	if errors.Is(err, service.ErrSchemeNotFound) {
		writeError(w, http.StatusNotFound, service.ErrSchemeNotFound.Error())
		return
	}
	if err != nil {
		h.Log.Error("failed to get scheme", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// Categories handles GET /api/categories.
func (h *SchemeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	tiles, err := h.SchemeService.Tiles(r.Context())
	if err != nil {
		h.Log.Error("failed to count categories", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, tiles)
}

var errBadPage = errors.New("limit and offset must be non-negative integers")

func parsePage(limit, offset string) (service.Page, error) {
	var page service.Page
	var err error
	if limit != "" {
		if page.Limit, err = strconv.Atoi(limit); err != nil || page.Limit < 0 {
			return page, errBadPage
		}
	}
	if offset != "" {
		if page.Offset, err = strconv.Atoi(offset); err != nil || page.Offset < 0 {
			return page, errBadPage
		}
	}
	return page, nil
}
