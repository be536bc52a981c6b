package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// touchInterval limits last_seen_at writes to one per minute per session.
const touchInterval = time.Minute

// ClientInfo describes the device a session was opened from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SessionService issues, resolves and revokes login sessions.
type SessionService struct {
	store    store.Store
	tokens   *auth.SessionTokens
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(store store.Store, tokens *auth.SessionTokens, duration time.Duration, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionService{
		store:    store,
		tokens:   tokens,
		duration: duration,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Duration is the lifetime of a new session, used for the cookie Max-Age.
func (s *SessionService) Duration() time.Duration {
	return s.duration
}

// build prepares an unsaved session for userID.
func (s *SessionService) build(userID string, client ClientInfo) (*domain.Session, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	now := s.now()
	return &domain.Session{
		ID:         sessionID,
		UserID:     userID,
		ExpiresAt:  now.Add(s.duration),
		CreatedAt:  now,
		LastSeenAt: now,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
	}, nil
}

// Issue persists a new session and returns it with its cookie token.
func (s *SessionService) Issue(ctx context.Context, userID string, client ClientInfo) (*domain.Session, string, error) {
	session, err := s.build(userID, client)
	if err != nil {
		return nil, "", err
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return session, s.Token(session), nil
}

// Token seals the session reference for the cookie.
func (s *SessionService) Token(session *domain.Session) string {
	return s.tokens.Seal(session.ID, session.UserID, session.ExpiresAt)
}

// Resolve turns a cookie token into the request's viewer. A missing,
// malformed, tampered, expired or revoked token yields a nil viewer and no
// error: the request simply proceeds anonymously. Only storage failures
// are returned.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Viewer, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Open(token)
	if err != nil {
		s.logger.Debug("rejected session token", "error", err)
		return nil, nil
	}

	session, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != claims.UserID {
		s.logger.Warn("session token does not match session owner", "session_id", session.ID)
		return nil, nil
	}

	now := s.now()
	if session.IsExpired(now) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil && !domainerrors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, nil
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session user: %w", err)
	}
	if !user.IsActive {
		return nil, nil
	}

	if now.Sub(session.LastSeenAt) >= touchInterval {
		if err := s.store.TouchSession(ctx, session.ID, now); err != nil {
			s.logger.Warn("failed to touch session", "session_id", session.ID, "error", err)
		}
	}

	return &domain.Viewer{SessionID: session.ID, User: user}, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every lapsed session.
func (s *SessionService) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Debug("purged expired sessions", "count", n)
	}
	return n, nil
}
