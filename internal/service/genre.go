package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/genre"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// GenreService orchestrates genre operations.
type GenreService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewGenreService creates a new genre service.
func NewGenreService(store store.Store, validator *validation.Validator, logger *slog.Logger) *GenreService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GenreService{store: store, validator: validator, logger: logger}
}

// List returns every genre by name.
func (s *GenreService) List(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list genres")
	}
	return genres, nil
}

// Lookup finds a genre by slug, alias or display name.
func (s *GenreService) Lookup(ctx context.Context, raw string) (*domain.Genre, error) {
	g, err := s.store.GetGenreBySlug(ctx, genre.Resolve(raw))
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgGenreNotFound, "failed to load genre")
	}
	return g, nil
}

// CreateGenreRequest contains fields for creating a genre.
type CreateGenreRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=100"`
}

// Create adds a genre. Moderators only.
func (s *GenreService) Create(ctx context.Context, v *domain.Viewer, req CreateGenreRequest) (*domain.Genre, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	g, err := s.create(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("genre created", "genre_id", g.ID, "slug", g.Slug, "moderator_id", v.UserID())
	return g, nil
}

func (s *GenreService) create(ctx context.Context, name string) (*domain.Genre, error) {
	slug := genre.Slugify(name)
	if slug == "" {
		return nil, domainerrors.FieldError("name", "Enter a valid value.")
	}

	g := &domain.Genre{
		ID:        id.MustGenerate(id.PrefixGenre),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateGenre(ctx, g); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.FieldError("name", "A genre with this name already exists.")
		}
		return nil, domainerrors.Wrap(err, "failed to create genre")
	}
	return g, nil
}

// EnsureDefaults creates any default genre that is missing and returns how
// many were added.
func (s *GenreService) EnsureDefaults(ctx context.Context) (int, error) {
	added := 0
	for _, name := range genre.DefaultGenres {
		_, err := s.store.GetGenreBySlug(ctx, genre.Slugify(name))
		if err == nil {
			continue
		}
		if !domainerrors.Is(err, store.ErrNotFound) {
			return added, fmt.Errorf("look up genre %q: %w", name, err)
		}
		if _, err := s.create(ctx, name); err != nil {
			return added, fmt.Errorf("create genre %q: %w", name, err)
		}
		added++
	}
	if added > 0 {
		s.logger.Info("default genres created", "count", added)
	}
	return added, nil
}
