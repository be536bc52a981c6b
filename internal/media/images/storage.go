// Package images stores uploaded book and avatar images on disk.
package images

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind is the subdirectory an image belongs to.
type Kind string

// Image kinds.
const (
	KindBook   Kind = "books"
	KindAvatar Kind = "avatars"
)

var kinds = []Kind{KindBook, KindAvatar}

// ErrInvalidRef is returned for references that do not name a stored image.
var ErrInvalidRef = errors.New("invalid image reference")

// Storage manages image files under a media root.
// Safe for concurrent use.
//
// Images are addressed by a reference of the form "{kind}/{uuid}.{ext}",
// which is what the database stores and what /media/ serves.
type Storage struct {
	root string
	mu   sync.RWMutex
}

// NewStorage creates the media root and one directory per kind.
func NewStorage(root string) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}

	for _, k := range kinds {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", k, err)
		}
	}

	return &Storage{root: root}, nil
}

// Root returns the media root directory.
func (s *Storage) Root() string {
	return s.root
}

// Save writes data under a fresh name and returns its reference.
func (s *Storage) Save(kind Kind, ext string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	if !validKind(kind) {
		return "", fmt.Errorf("unknown image kind %q", kind)
	}

	ref := path.Join(string(kind), uuid.NewString()+"."+strings.TrimPrefix(ext, "."))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(ref), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return ref, nil
}

// Get reads a stored image.
func (s *Storage) Get(ref string) ([]byte, error) {
	p, err := s.Path(ref)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", ref, err)
	}
	return data, nil
}

// Exists reports whether ref names a stored image.
func (s *Storage) Exists(ref string) bool {
	p, err := s.Path(ref)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(p)
	return err == nil
}

// Delete removes an image. Deleting a missing image is not an error.
func (s *Storage) Delete(ref string) error {
	p, err := s.Path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path resolves ref to a file path, rejecting anything outside the kind
// directories.
func (s *Storage) Path(ref string) (string, error) {
	kind, name, ok := strings.Cut(ref, "/")
	if !ok || !validKind(Kind(kind)) || name == "" ||
		strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return s.path(ref), nil
}

func (s *Storage) path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}

func validKind(k Kind) bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}
