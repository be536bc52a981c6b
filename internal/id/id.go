// Package id generates prefixed entity identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. An ID reads as "<prefix>-<nanoid>", e.g. "book-V1StGXR8_Z5jdHi6B-myT".
const (
	PrefixUser    = "user"
	PrefixSession = "session"
	PrefixGenre   = "genre"
	PrefixBook    = "book"
	PrefixComment = "comment"
)

// Generate creates a prefixed NanoID. It fails only when the system
// cannot supply enough randomness.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
