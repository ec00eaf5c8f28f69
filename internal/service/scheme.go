// Package service provides the scheme, authentication and video lookup
// business logic, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/repository"
)

// ErrSchemeNotFound is returned when a scheme lookup finds nothing.
// It is an expected outcome rather than a failure.
var ErrSchemeNotFound = errors.New("scheme not found")

// SchemeRepository defines the persistence operations needed by the SchemeService.
type SchemeRepository interface {
	// ListByCategory returns schemes stored under any of spellings.
	ListByCategory(ctx context.Context, spellings []string, limit, offset int) ([]models.Scheme, error)
	// ListAll returns every scheme.
	ListAll(ctx context.Context, limit, offset int) ([]models.Scheme, error)
	// GetByID returns a single scheme or repository.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Scheme, error)
	// ListCategories returns the category value of every row.
	ListCategories(ctx context.Context) ([]string, error)
}

// Page selects a range of results. A zero Limit means no range.
type Page struct {
	Limit  int
	Offset int
}

// SchemeService implements read-only scheme queries.
type SchemeService struct {
	repo SchemeRepository
}

// NewSchemeService constructs a SchemeService with the provided SchemeRepository.
func NewSchemeService(repo SchemeRepository) *SchemeService {
	return &SchemeService{repo: repo}
}

// ListByCategory returns the schemes in category, including rows stored under
// a short or legacy spelling, so the list agrees with the tile counts.
func (s *SchemeService) ListByCategory(ctx context.Context, category string, page Page) ([]models.Scheme, error) {
	return s.repo.ListByCategory(ctx, Spellings(category), page.Limit, page.Offset)
}

// Spellings returns the stored values that display as category: the label
// followed by its short and legacy forms. Unknown categories match only themselves.
func Spellings(category string) []string {
	c, ok := models.ParseCategory(category)
	if !ok {
		return []string{category}
	}
	return append([]string{c.Label()}, models.LegacyValues(c)...)
}

// ListAll returns every scheme.
func (s *SchemeService) ListAll(ctx context.Context, page Page) ([]models.Scheme, error) {
	return s.repo.ListAll(ctx, page.Limit, page.Offset)
}

// GetByID returns the scheme with id or ErrSchemeNotFound.
func (s *SchemeService) GetByID(ctx context.Context, id string) (*models.Scheme, error) {
	sc, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSchemeNotFound
	}
	return sc, err
}

// CountByCategory tallies every row by its display category.
// The counts always sum to the number of rows.
func (s *SchemeService) CountByCategory(ctx context.Context) (map[string]int, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return Tally(cats), nil
}

// Tiles returns the dashboard tiles with their scheme counts.
func (s *SchemeService) Tiles(ctx context.Context) ([]models.CategoryTile, error) {
	counts, err := s.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	tiles := make([]models.CategoryTile, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		tiles = append(tiles, models.CategoryTile{
			Key:   c.Key(),
			Label: c.Label(),
			Icon:  c.Icon(),
			Color: c.Color(),
			Count: counts[c.Label()],
		})
	}
	return tiles, nil
}

// Tally counts stored category values by display label.
func Tally(stored []string) map[string]int {
	counts := make(map[string]int)
	for _, c := range stored {
		counts[models.DisplayLabel(c)]++
	}
	return counts
}

// Search keeps the schemes whose title or description contains query.
func Search(schemes []models.Scheme, query string) []models.Scheme {
	out := make([]models.Scheme, 0, len(schemes))
	for _, sc := range schemes {
		if sc.Matches(query) {
			out = append(out, sc)
		}
	}
	return out
}
