package domain

import "time"

// Session is a persisted login. The cookie only carries a sealed reference to it,
// so deleting the row signs the browser out.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// IsExpired reports whether the session has lapsed at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Touch updates the last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now().UTC()
}
