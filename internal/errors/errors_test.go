package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Forbidden("you cannot edit this book")
	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("edit book: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestFieldErrors(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"price": "price is required"})
	assert.Equal(t, map[string]string{"price": "price is required"}, FieldErrors(fmt.Errorf("x: %w", err)))
	assert.Nil(t, FieldErrors(NotFound("missing")))
	assert.Nil(t, FieldErrors(fmt.Errorf("plain")))

	single := FieldError("text", "text is required")
	assert.Equal(t, "text is required", FieldErrors(single)["text"])
}

func TestWrapHidesCauseFromMessage(t *testing.T) {
	err := Wrap(fmt.Errorf("disk full"), "failed to save book")
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal server error", Message(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "book not found", Message(NotFound("book not found")))
}
