package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// ProvideValidator provides the shared form validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.SessionTokens](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokens, cfg.Auth.SessionDuration, log.Logger), nil
}

// ProvideAuthService provides registration and login.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	processor := do.MustInvoke[*images.Processor](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, sessions, processor, validator, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, processor, indexHandle.SearchIndex, validator, log.Logger), nil
}

// ProvideCommentService provides the comment service.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommentService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideGenreService provides the genre service.
func ProvideGenreService(i do.Injector) (*service.GenreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGenreService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideAdminService provides the moderation dashboard service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	books := do.MustInvoke[*service.BookService](i)
	comments := do.MustInvoke[*service.CommentService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(books, comments, log.Logger), nil
}
