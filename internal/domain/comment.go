package domain

// Comment is feedback left on a book. AuthorID is empty for anonymous
// comments, which are identified only by Email.
type Comment struct {
	Record
	BookID     string `json:"book_id"`
	AuthorID   string `json:"author_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Text       string `json:"text"`
	IsVerified bool   `json:"is_verified"`

	// Display fields populated by list queries.
	AuthorName string `json:"author_name,omitempty"`
	BookName   string `json:"book_name,omitempty"`
}

// IsAnonymous reports whether the comment has no author account.
func (c *Comment) IsAnonymous() bool {
	return c.AuthorID == ""
}
