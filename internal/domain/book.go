package domain

// Book is a seller's listing. It is publicly visible only once a moderator
// has set IsVerified.
type Book struct {
	Record
	SellerID        string  `json:"seller_id"`
	Name            string  `json:"name"`
	Author          string  `json:"author"`
	Genres          []Genre `json:"genres"`
	Description     string  `json:"description"`
	Publication     string  `json:"publication"`
	PublicationYear string  `json:"publication_year"`
	Quantity        int     `json:"quantity"`
	Price           Price   `json:"price"`
	Image           string  `json:"image,omitempty"`
	ImageBlurHash   string  `json:"image_blurhash,omitempty"`
	IsVerified      bool    `json:"is_verified"`
}

// GenreIDs returns the IDs of the book's genres in order.
func (b *Book) GenreIDs() []string {
	ids := make([]string, len(b.Genres))
	for i, g := range b.Genres {
		ids[i] = g.ID
	}
	return ids
}

// VisibleTo reports whether v may see the book. Unverified listings are
// limited to their seller and moderators.
func (b *Book) VisibleTo(v *Viewer) bool {
	return b.IsVerified || v.IsSuperuser() || v.Owns(b.SellerID)
}

// InStock reports whether at least one copy is available.
func (b *Book) InStock() bool {
	return b.Quantity > 0
}
