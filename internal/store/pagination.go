package store

import "math"

// DefaultPageSize is the catalog page size.
const DefaultPageSize = 12

// PageParams selects a 1-based page of results.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize clamps the size to 1..100, defaulting to DefaultPageSize, and
// the page to 1..MaxPage(size) so Offset cannot overflow.
func (p *PageParams) Normalize() {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if last := MaxPage(p.PageSize); p.Page > last {
		p.Page = last
	}
}

// MaxPage is the highest page number whose offset fits in an int.
// Such a page is far past any real result set, so it is always empty.
func MaxPage(pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return math.MaxInt / pageSize
}

// Offset returns the number of rows to skip.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of results. A page past the end has no items;
// it is not an error.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// TotalPages returns the number of non-empty pages.
func (p *Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page has items.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious reports whether an earlier page exists.
func (p *Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// NextPage returns the following page number.
func (p *Page[T]) NextPage() int { return p.Page + 1 }

// PreviousPage returns the preceding page number.
func (p *Page[T]) PreviousPage() int { return p.Page - 1 }
