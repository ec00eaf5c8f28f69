// Package repository provides PostgreSQL persistence for schemes and
// authentication state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a single-row lookup finds nothing.
var ErrNotFound = errors.New("not found")

const schemeColumns = `id, title, description, eligibility_criteria, benefits, application_process, category, video_url`

// PostgresSchemeRepository reads and seeds the schemes table.
type PostgresSchemeRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresSchemeRepository creates a PostgresSchemeRepository using the provided *sql.DB.
func NewPostgresSchemeRepository(db *sql.DB) *PostgresSchemeRepository {
	return &PostgresSchemeRepository{DB: db}
}

// ListByCategory returns the schemes stored under any of spellings, ordered
// by title. Spellings are compared case-insensitively and ignoring surrounding
// spaces. A positive limit enables range pagination from offset.
func (s *PostgresSchemeRepository) ListByCategory(ctx context.Context, spellings []string, limit, offset int) ([]models.Scheme, error) {
	lowered := make([]string, len(spellings))
	for i, v := range spellings {
		lowered[i] = strings.ToLower(strings.TrimSpace(v))
	}
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE lower(btrim(category)) = ANY($1) ORDER BY title, id`
	args := []any{pq.Array(lowered)}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByCategory: %w", err)
	}
	return scanSchemes(rows)
}

// ListAll returns every scheme ordered by title.
func (s *PostgresSchemeRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes ORDER BY title, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return scanSchemes(rows)
}

// GetByID returns the scheme with the given id, or ErrNotFound.
func (s *PostgresSchemeRepository) GetByID(ctx context.Context, id string) (*models.Scheme, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE id = $1`, id)
	return scanOne(row)
}

// GetByTitle returns the first scheme with the given title, or ErrNotFound.
func (s *PostgresSchemeRepository) GetByTitle(ctx context.Context, title string) (*models.Scheme, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE title = $1 ORDER BY id LIMIT 1`, title)
	return scanOne(row)
}

// ListCategories returns the category value of every row.
func (s *PostgresSchemeRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT category FROM schemes`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c sql.NullString
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, c.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return out, nil
}

// ReplaceAll deletes every scheme and inserts schemes within one transaction.
func (s *PostgresSchemeRepository) ReplaceAll(ctx context.Context, schemes []models.Scheme) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schemes`); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	for _, sc := range schemes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schemes (`+schemeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, sc.ID, sc.Title, sc.Description, sc.EligibilityCriteria, sc.Benefits,
			sc.ApplicationProcess, sc.Category, nullable(sc.VideoURL))
		if err != nil {
			return fmt.Errorf("insert %q: %w", sc.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RenameCategories rewrites every row whose category is one of from to to.
// It returns the number of rows changed.
func (s *PostgresSchemeRepository) RenameCategories(ctx context.Context, from []string, to string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE schemes SET category = $1 WHERE category = ANY($2)`,
		to, pq.Array(from))
	if err != nil {
		return 0, fmt.Errorf("RenameCategories: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScheme(row scanner) (models.Scheme, error) {
	var (
		sc                                  models.Scheme
		desc, elig, benefits, process, link sql.NullString
	)
	err := row.Scan(&sc.ID, &sc.Title, &desc, &elig, &benefits, &process, &sc.Category, &link)
	if err != nil {
		return models.Scheme{}, err
	}
	sc.Description = desc.String
	sc.EligibilityCriteria = elig.String
	sc.Benefits = benefits.String
	sc.ApplicationProcess = process.String
	sc.VideoURL = link.String
	return sc, nil
}

func scanOne(row *sql.Row) (*models.Scheme, error) {
	sc, err := scanScheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &sc, nil
}

func scanSchemes(rows *sql.Rows) ([]models.Scheme, error) {
	defer rows.Close()

	schemes := []models.Scheme{}
	for rows.Next() {
		sc, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		schemes = append(schemes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return schemes, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
