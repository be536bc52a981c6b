// Package search indexes verified books in Bleve for full-text lookup by
// title, author, publisher and description, with genre and year filters.
package search

import (
	"strconv"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

// BookDocument is what the index stores for one book. Genre names and slugs
// are denormalized so a single query covers them.
type BookDocument struct {
	ID              string
	Name            string
	Author          string
	Description     string
	Publication     string
	GenreSlugs      []string
	GenreNames      []string
	PublicationYear int
	PriceCents      int64
	CreatedAt       int64 // Unix millis
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"author":      d.Author,
		"price_cents": float64(d.PriceCents),
		"created_at":  float64(d.CreatedAt),
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publication != "" {
		m["publication"] = d.Publication
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if len(d.GenreNames) > 0 {
		m["genre_names"] = d.GenreNames
	}
	if d.PublicationYear > 0 {
		m["publication_year"] = float64(d.PublicationYear)
	}

	return m
}

// NewBookDocument builds the index document for a book. A publication year
// that is not numeric is left out of year filtering.
func NewBookDocument(book *domain.Book) *BookDocument {
	doc := &BookDocument{
		ID:          book.ID,
		Name:        book.Name,
		Author:      book.Author,
		Description: book.Description,
		Publication: book.Publication,
		PriceCents:  int64(book.Price),
		CreatedAt:   book.CreatedAt.UnixMilli(),
	}

	for _, g := range book.Genres {
		doc.GenreSlugs = append(doc.GenreSlugs, g.Slug)
		doc.GenreNames = append(doc.GenreNames, g.Name)
	}

	if year, err := strconv.Atoi(book.PublicationYear); err == nil {
		doc.PublicationYear = year
	}

	return doc
}
