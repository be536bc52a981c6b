package sqlite

import (
	"context"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

const genreColumns = `id, name, slug, created_at`

func scanGenre(scanner interface{ Scan(dest ...any) error }) (domain.Genre, error) {
	var (
		g         domain.Genre
		createdAt string
	)
	if err := scanner.Scan(&g.ID, &g.Name, &g.Slug, &createdAt); err != nil {
		return g, err
	}
	var err error
	g.CreatedAt, err = parseTime(createdAt)
	return g, err
}

// CreateGenre inserts a genre. Names and slugs are unique.
func (s *Store) CreateGenre(ctx context.Context, genre *domain.Genre) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (`+genreColumns+`) VALUES (?, ?, ?, ?)`,
		genre.ID, genre.Name, genre.Slug, formatTime(genre.CreatedAt),
	)
	return uniqueViolation(err)
}

// GetGenre retrieves a genre by ID.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	g, err := scanGenre(s.db.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// GetGenreBySlug retrieves a genre by slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	g, err := scanGenre(s.db.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE slug = ?`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// GetGenresByIDs returns the genres that exist among ids, ordered by name.
// Missing IDs are skipped; callers compare lengths to detect them.
func (s *Store) GetGenresByIDs(ctx context.Context, ids []string) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryGenres(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id IN (`+placeholders(len(ids))+`) ORDER BY name`,
		stringArgs(ids)...)
}

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.queryGenres(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY name`)
}

func (s *Store) queryGenres(ctx context.Context, query string, args ...any) ([]domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
