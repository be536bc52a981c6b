package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

const sessionColumns = `id, user_id, expires_at, created_at, last_seen_at, ip_address, user_agent`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var (
		sess       domain.Session
		expiresAt  string
		createdAt  string
		lastSeenAt string
		ipAddress  sql.NullString
		userAgent  sql.NullString
	)

	err := scanner.Scan(&sess.ID, &sess.UserID, &expiresAt, &createdAt, &lastSeenAt, &ipAddress, &userAgent)
	if err != nil {
		return nil, err
	}

	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sess.LastSeenAt, err = parseTime(lastSeenAt); err != nil {
		return nil, err
	}
	sess.IPAddress = ipAddress.String
	sess.UserAgent = userAgent.String

	return &sess, nil
}

func insertSession(ctx context.Context, q querier, session *domain.Session) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
		nullString(session.IPAddress),
		nullString(session.UserAgent),
	)
	return uniqueViolation(err)
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	return insertSession(ctx, s.db, session)
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, notFound(err)
	}
	return sess, nil
}

// TouchSession records activity on a session.
func (s *Store) TouchSession(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteSession removes a session. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteUserSessions removes every session of a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions that lapsed before now and returns how many.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
