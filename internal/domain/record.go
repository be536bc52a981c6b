package domain

import "time"

// Record carries the identity and timestamps shared by persisted entities.
// CreatedAt is set once and never rewritten by updates.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both timestamps to now. Call once, on creation.
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
