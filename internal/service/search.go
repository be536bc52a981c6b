package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/genre"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// SearchRequest is a catalog search.
type SearchRequest struct {
	Query string
	Genre string // slug, alias or display name
	Sort  string
	Page  int
}

// SearchPage is one page of matching verified books, in hit order.
type SearchPage struct {
	Query  string
	Books  []*domain.Book
	Genres []search.FacetCount
	Page   int
	Total  int
}

// TotalPages returns the number of pages of hits.
func (p *SearchPage) TotalPages() int {
	return (p.Total + store.DefaultPageSize - 1) / store.DefaultPageSize
}

// HasNext reports whether more hits follow.
func (p *SearchPage) HasNext() bool { return p.Page < p.TotalPages() }

// HasPrevious reports whether an earlier page exists.
func (p *SearchPage) HasPrevious() bool { return p.Page > 1 }

// NextPage returns the following page number.
func (p *SearchPage) NextPage() int { return p.Page + 1 }

// PreviousPage returns the preceding page number.
func (p *SearchPage) PreviousPage() int { return p.Page - 1 }

// Search queries the full-text index and loads the matching books.
// Books unverified since they were indexed are dropped from the page.
func (s *BookService) Search(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	paging := store.PageParams{Page: req.Page, PageSize: store.DefaultPageSize}
	paging.Normalize()
	req.Page = paging.Page

	params := search.SearchParams{
		Query:         strings.TrimSpace(req.Query),
		Limit:         paging.PageSize,
		Offset:        paging.Offset(),
		SortBy:        req.Sort,
		IncludeFacets: true,
	}
	if req.Genre != "" {
		params.GenreSlugs = []string{genre.Resolve(req.Genre)}
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, "search failed")
	}

	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to load search results")
	}

	visible := books[:0]
	for _, b := range books {
		if b.IsVerified {
			visible = append(visible, b)
		}
	}

	return &SearchPage{
		Query:  params.Query,
		Books:  visible,
		Genres: result.Genres,
		Page:   req.Page,
		Total:  int(result.Total),
	}, nil
}

// Reindex rebuilds the search index from every verified book.
func (s *BookService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	count := 0
	err := s.eachBook(ctx, store.BookFilter{Verified: store.Bool(true)}, func(page []*domain.Book) error {
		docs := make([]*search.BookDocument, len(page))
		for i, b := range page {
			docs[i] = search.NewBookDocument(b)
		}
		if err := s.index.IndexBooks(docs); err != nil {
			return err
		}
		count += len(docs)
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", count)
	return count, nil
}

// indexBook and unindexBook keep the index in step with verification.
// The database is the source of truth, so failures are only logged.
func (s *BookService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(search.NewBookDocument(book)); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

func (s *BookService) unindexBook(bookID string) {
	if s.index == nil {
		return
	}
	if err := s.index.DeleteBook(bookID); err != nil {
		s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
	}
}
