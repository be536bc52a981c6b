package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func makeTestSession(t *testing.T, s *Store, userID string, expiresAt time.Time) *domain.Session {
	t.Helper()
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:         id.MustGenerate(id.PrefixSession),
		UserID:     userID,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		LastSeenAt: now,
		IPAddress:  "127.0.0.1",
		UserAgent:  "test",
	}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestSessions_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "frank")
	sess := makeTestSession(t, s, u.ID, time.Now().Add(time.Hour))

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != u.ID || got.IPAddress != "127.0.0.1" || got.UserAgent != "test" {
		t.Errorf("unexpected session: %+v", got)
	}

	seen := time.Now().UTC().Add(time.Minute)
	if err := s.TouchSession(ctx, sess.ID, seen); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _ = s.GetSession(ctx, sess.ID)
	if !got.LastSeenAt.Equal(seen) {
		t.Errorf("last_seen_at: got %v want %v", got.LastSeenAt, seen)
	}

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetSession(ctx, sess.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSession(ctx, sess.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "grace")

	now := time.Now().UTC()
	expired := makeTestSession(t, s, u.ID, now.Add(-time.Hour))
	live := makeTestSession(t, s, u.ID, now.Add(time.Hour))

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if _, err := s.GetSession(ctx, expired.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expired session still present: %v", err)
	}
	if _, err := s.GetSession(ctx, live.ID); err != nil {
		t.Errorf("live session removed: %v", err)
	}

	if err := s.DeleteUserSessions(ctx, u.ID); err != nil {
		t.Fatalf("delete user sessions: %v", err)
	}
	if _, err := s.GetSession(ctx, live.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user sessions not removed: %v", err)
	}
}
