// Package store defines the persistence interface for the marketplace.
package store

import (
	"context"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

// Store defines all persistence operations.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	// CreateUserWithSession inserts the account and its first session atomically.
	CreateUserWithSession(ctx context.Context, user *domain.User, session *domain.Session) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Genres
	CreateGenre(ctx context.Context, genre *domain.Genre) error
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	GetGenresByIDs(ctx context.Context, ids []string) ([]domain.Genre, error)
	ListGenres(ctx context.Context) ([]domain.Genre, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	SetBookVerified(ctx context.Context, id string, verified bool) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter BookFilter, params PageParams) (*Page[*domain.Book], error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	SetCommentVerified(ctx context.Context, id string, verified bool) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, filter CommentFilter) ([]*domain.Comment, error)
}

// BookFilter narrows ListBooks. Zero values match everything.
type BookFilter struct {
	Verified *bool
	SellerID string
}

// CommentFilter narrows ListComments. Zero values match everything.
type CommentFilter struct {
	BookID   string
	Verified *bool
}

// Bool returns a pointer to b, for filter fields.
func Bool(b bool) *bool { return &b }
