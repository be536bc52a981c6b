package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchIndex wraps a Bleve index of books.
//
// All methods are safe for concurrent use. The mutex keeps readers out
// while Rebuild swaps the underlying index.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory holding search.bleve
	Logger   *slog.Logger // Discards when nil
}

// mappingVersion changes whenever buildIndexMapping does; a mismatch on
// startup drops the index so it is rebuilt from the database.
const mappingVersion = "bookbazaar-1"

// NewSearchIndex opens the index under opts.DataPath, creating it when it
// is missing, unreadable or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DataPath == "" {
		return nil, fmt.Errorf("search data path cannot be empty")
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search mapping changed, rebuilding index",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				index = nil
			}
		}
		if index == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if index == nil {
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces one book.
func (s *SearchIndex) IndexBook(doc *BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexBooks adds documents in batches of 500.
func (s *SearchIndex) IndexBooks(docs []*BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteBook removes a book. Removing an unindexed id is not an error.
func (s *SearchIndex) DeleteBook(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed books.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by recreating the index. Blocks all other
// operations until done.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
