package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate(PrefixBook)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixSession, PrefixGenre, PrefixBook, PrefixComment} {
		t.Run(prefix, func(t *testing.T) {
			id := MustGenerate(prefix)
			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21)
			assert.True(t, HasPrefix(id, prefix))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.False(t, HasPrefix("book-", PrefixBook))
	assert.False(t, HasPrefix("comment-abc", PrefixBook))
	assert.True(t, HasPrefix("book-abc", PrefixBook))
}
