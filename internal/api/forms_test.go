package api

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/books/"},
		{"/users/profile/", "/users/profile/"},
		{"/books/?page=2", "/books/?page=2"},
		{"books/", "/books/"},
		{"//evil.example.com/", "/books/"},
		{"/\\evil.example.com", "/books/"},
		{"https://evil.example.com/", "/books/"},
		{"javascript:alert(1)", "/books/"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.raw))
		})
	}
}

func TestPageParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-2", 1},
		{"page=abc", 1},
		{"page=2.5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/books/?"+tt.query, nil)
			assert.Equal(t, tt.want, pageParam(r))
		})
	}
}

func TestBookURLEscapesID(t *testing.T) {
	assert.Equal(t, "/books/book-1/", bookURL("book-1"))
	assert.Equal(t, "/books/a%2Fb/", bookURL("a/b"))
}

func TestBindForm(t *testing.T) {
	var book service.BookForm
	err := bindForm(url.Values{
		"name":        {"Белая гвардия"},
		"genres":      {"genre-1", "genre-2"},
		"price":       {"380.00"},
		"image-clear": {"on"},
		"next":        {"/books/"},
	}, &book)
	require.NoError(t, err)
	assert.Equal(t, "Белая гвардия", book.Name)
	assert.Equal(t, []string{"genre-1", "genre-2"}, book.GenreIDs)
	assert.Equal(t, "380.00", book.Price)
	assert.True(t, book.ClearImage)
	assert.Nil(t, book.Image)

	var login service.LoginRequest
	require.NoError(t, bindForm(url.Values{"username": {"reader"}, "password": {"secret"}}, &login))
	assert.Equal(t, service.LoginRequest{Username: "reader", Password: "secret"}, login)

	var bad service.BookForm
	err = bindForm(url.Values{"image-clear": {"maybe"}}, &bad)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
	assert.Contains(t, domainerrors.FieldErrors(err), "image-clear")
}
