package service

import (
	"context"
	"log/slog"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

// Dashboard is the moderation queue.
type Dashboard struct {
	Books    []*domain.Book
	Comments []*domain.Comment
}

// AdminService assembles moderator views.
type AdminService struct {
	books    *BookService
	comments *CommentService
	logger   *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(books *BookService, comments *CommentService, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AdminService{books: books, comments: comments, logger: logger}
}

// Dashboard lists unverified books and comments, newest first.
func (s *AdminService) Dashboard(ctx context.Context, v *domain.Viewer) (*Dashboard, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}

	books, err := s.books.ListUnverified(ctx, v)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListUnverified(ctx, v)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Books: books, Comments: comments}, nil
}
