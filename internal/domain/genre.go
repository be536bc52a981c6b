package domain

import "time"

// Genre is a lookup tag attached to books. Books and genres are many-to-many.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
