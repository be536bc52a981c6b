package store_test

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func TestError_Is(t *testing.T) {
	decorated := store.ErrAlreadyExists.WithMessage("username taken").WithField("username")
	wrapped := fmt.Errorf("create user: %w", decorated)

	assert.True(t, errors.Is(wrapped, store.ErrAlreadyExists))
	assert.False(t, errors.Is(wrapped, store.ErrNotFound))

	var se *store.Error
	assert.True(t, errors.As(wrapped, &se))
	assert.Equal(t, "username", se.Field)
	assert.Equal(t, http.StatusConflict, se.HTTPCode())
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("db error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "db error")
	assert.Nil(t, store.ErrNotFound.Err, "sentinel must stay untouched")
}

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       store.PageParams
		wantPage int
		wantSize int
	}{
		{"defaults", store.PageParams{}, 1, store.DefaultPageSize},
		{"negative page", store.PageParams{Page: -3, PageSize: 5}, 1, 5},
		{"oversized", store.PageParams{Page: 2, PageSize: 1000}, 2, 100},
		{"huge page", store.PageParams{Page: math.MaxInt, PageSize: 12}, math.MaxInt / 12, 12},
		{"overflowing page", store.PageParams{Page: math.MaxInt/12*2 + 2, PageSize: 12}, math.MaxInt / 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
		})
	}

	assert.Equal(t, 24, store.PageParams{Page: 3, PageSize: 12}.Offset())

	last := store.PageParams{Page: math.MaxInt, PageSize: 12}
	last.Normalize()
	assert.Positive(t, last.Offset())
}

func TestPage_Navigation(t *testing.T) {
	tests := []struct {
		page      int
		wantNext  bool
		wantPrev  bool
		wantTotal int
	}{
		{1, true, false, 3},
		{2, true, true, 3},
		{3, false, true, 3},
		{4, false, true, 3},
	}
	for _, tt := range tests {
		p := &store.Page[int]{Page: tt.page, PageSize: 12, Total: 25}
		assert.Equal(t, tt.wantNext, p.HasNext(), "page %d", tt.page)
		assert.Equal(t, tt.wantPrev, p.HasPrevious(), "page %d", tt.page)
		assert.Equal(t, tt.wantTotal, p.TotalPages())
	}

	empty := &store.Page[int]{Page: 1, PageSize: 12}
	assert.Equal(t, 0, empty.TotalPages())
	assert.False(t, empty.HasNext())
}
