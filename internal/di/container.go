// Package di provides dependency injection configuration for the BookBazaar server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/di/providers"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSessionKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStorage)
	do.Provide(injector, providers.ProvideImageProcessor)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideSessionTokens)
	do.Provide(injector, providers.ProvideAuthRateLimiter)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideCommentService)
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideAdminService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services, rebuilds an empty search index and
// starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.SessionKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.SessionTokens](injector)
	_ = do.MustInvoke[*ratelimit.KeyedRateLimiter](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.CommentService](injector)
	_ = do.MustInvoke[*service.GenreService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	if err := providers.ReindexSearchIfEmpty(injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
