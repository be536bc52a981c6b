package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
)

// ProvideImageStorage provides storage for book covers and avatars.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.MediaPath())
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	log.Info("Image storage initialized", "path", cfg.Data.MediaPath())
	return storage, nil
}

// ProvideImageProcessor provides the upload processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}
