package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ReindexSearchIfEmpty rebuilds an empty index from the database before
// the server starts taking requests. A fresh install has nothing to index.
func ReindexSearchIfEmpty(i do.Injector) error {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return nil
	}

	ctx := context.Background()
	page, err := storeHandle.ListBooks(ctx,
		store.BookFilter{Verified: store.Bool(true)},
		store.PageParams{Page: 1, PageSize: 1},
	)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		return nil
	}

	log.Info("Search index is empty but verified books exist, reindexing", "book_count", page.Total)

	count, err := books.Reindex(ctx)
	if err != nil {
		// The catalog works without search; the next start tries again.
		log.Error("Search reindex failed", "error", err)
		return nil
	}
	log.Info("Search reindex completed", "documents", count)
	return nil
}
