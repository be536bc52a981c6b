package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var phoneSeq int

func makeTestUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	phoneSeq++
	u := &domain.User{
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
		PhoneNumber:  fmt.Sprintf("+7999%07d", phoneSeq),
		IsActive:     true,
	}
	u.ID = id.MustGenerate(id.PrefixUser)
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func makeTestGenre(t *testing.T, s *Store, name, slug string) domain.Genre {
	t.Helper()
	g := domain.Genre{ID: id.MustGenerate(id.PrefixGenre), Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	if err := s.CreateGenre(context.Background(), &g); err != nil {
		t.Fatalf("create genre: %v", err)
	}
	return g
}

func makeTestBook(t *testing.T, s *Store, sellerID, name string, verified bool, genres ...domain.Genre) *domain.Book {
	t.Helper()
	b := &domain.Book{
		SellerID:        sellerID,
		Name:            name,
		Author:          "Лев Толстой",
		Genres:          genres,
		Description:     "A long novel.",
		Publication:     "Эксмо",
		PublicationYear: "1869",
		Quantity:        3,
		Price:           domain.Price(49900),
		IsVerified:      verified,
	}
	b.ID = id.MustGenerate(id.PrefixBook)
	b.InitTimestamps()
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("create book: %v", err)
	}
	return b
}

func makeTestComment(t *testing.T, s *Store, bookID, authorID, text string, verified bool) *domain.Comment {
	t.Helper()
	c := &domain.Comment{BookID: bookID, AuthorID: authorID, Email: "reader@example.com", Text: text, IsVerified: verified}
	c.ID = id.MustGenerate(id.PrefixComment)
	c.InitTimestamps()
	if err := s.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Every pooled connection must enforce foreign keys, so check several at once.
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatalf("conn: %v", err)
		}
		defer conn.Close()
		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("query foreign_keys: %v", err)
		}
		if fk != 1 {
			t.Errorf("conn %d: expected foreign_keys=1, got %d", i, fk)
		}
	}

	for _, table := range []string{"users", "sessions", "genres", "books", "book_genres", "comments"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	makeTestUser(t, first, "persisted")
	first.Close()

	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	n, err := second.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user after reopen, got %d", n)
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 5, 100_000_000, time.UTC)
	later := base.Add(20 * time.Millisecond)
	if !(formatTime(base) < formatTime(later)) {
		t.Errorf("%s should sort before %s", formatTime(base), formatTime(later))
	}
	parsed, err := parseTime(formatTime(later))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(later) {
		t.Errorf("round trip: got %v want %v", parsed, later)
	}
}

func TestUniqueViolation(t *testing.T) {
	err := uniqueViolation(fmt.Errorf("constraint failed: UNIQUE constraint failed: users.phone_number (2067)"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if got := fieldOf(err); got != "phone_number" {
		t.Errorf("field = %q, want phone_number", got)
	}

	other := fmt.Errorf("disk I/O error")
	if uniqueViolation(other) != other {
		t.Error("unrelated errors must pass through")
	}
	if uniqueViolation(nil) != nil {
		t.Error("nil must stay nil")
	}
}
