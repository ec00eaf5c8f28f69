// Package seed loads the scheme catalogue from YAML and writes it to the store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/service"
)

//go:embed schemes.yaml
var defaultSchemes []byte

// idSpace namespaces the IDs derived from scheme titles.
var idSpace = uuid.MustParse("6f1c7a52-3b0e-4c1e-9a57-2d8f0b9e4c11")

// ErrDuplicateTitle is returned when two seed rows share a title.
var ErrDuplicateTitle = errors.New("duplicate scheme title")

// Store is the persistence the seeder needs.
type Store interface {
	ReplaceAll(ctx context.Context, schemes []models.Scheme) error
	RenameCategories(ctx context.Context, from []string, to string) (int64, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Default returns the embedded scheme catalogue.
func Default() ([]models.Scheme, error) {
	return Parse(defaultSchemes)
}

// Load reads a YAML list of scheme records from r.
func Load(r io.Reader) ([]models.Scheme, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of scheme records. Each record goes through
// models.SchemeFromRecord; rows without an id get one derived from the title.
func Parse(data []byte) ([]models.Scheme, error) {
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	schemes := make([]models.Scheme, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		sc, err := models.SchemeFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if seen[sc.Title] {
			return nil, fmt.Errorf("row %d: %w: %q", i+1, ErrDuplicateTitle, sc.Title)
		}
		seen[sc.Title] = true
		if sc.ID == "" {
			sc.ID = uuid.NewSHA1(idSpace, []byte(sc.Title)).String()
		}
		schemes = append(schemes, sc)
	}
	return schemes, nil
}

// Seeder writes scheme data to a Store.
type Seeder struct {
	Store Store
	Log   *zap.Logger
}

// Run replaces every stored scheme with schemes. Running it twice leaves
// exactly len(schemes) rows.
func (s *Seeder) Run(ctx context.Context, schemes []models.Scheme) error {
	if err := s.Store.ReplaceAll(ctx, schemes); err != nil {
		return fmt.Errorf("seed schemes: %w", err)
	}
	s.Log.Info("seeded schemes", zap.Int("count", len(schemes)))
	return nil
}

// Migrate rewrites rows stored under a short key or a legacy spelling to the
// canonical label of their category. It returns the number of rows changed.
func (s *Seeder) Migrate(ctx context.Context) (int64, error) {
	var total int64
	for _, c := range models.Categories() {
		n, err := s.Store.RenameCategories(ctx, models.LegacyValues(c), c.Label())
		if err != nil {
			return total, fmt.Errorf("migrate %s: %w", c.Key(), err)
		}
		if n > 0 {
			s.Log.Info("migrated category", zap.String("category", c.Label()), zap.Int64("rows", n))
		}
		total += n
	}
	return total, nil
}

// Counts tallies the stored schemes by display category.
func (s *Seeder) Counts(ctx context.Context) (map[string]int, error) {
	cats, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return service.Tally(cats), nil
}
