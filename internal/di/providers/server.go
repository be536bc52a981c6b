package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/api"
	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storage := do.MustInvoke[*images.Storage](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)

	services := &api.Services{
		Sessions: do.MustInvoke[*service.SessionService](i),
		Auth:     do.MustInvoke[*service.AuthService](i),
		Books:    do.MustInvoke[*service.BookService](i),
		Comments: do.MustInvoke[*service.CommentService](i),
		Genres:   do.MustInvoke[*service.GenreService](i),
		Admin:    do.MustInvoke[*service.AdminService](i),
	}

	renderer, err := api.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	handler := api.NewServer(api.Options{
		Services: services,
		Store:    storeHandle.Store,
		Search:   indexHandle.SearchIndex,
		Media:    storage,
		Renderer: renderer,
		Tokens:   do.MustInvoke[*auth.SessionTokens](i),
		Cookies: api.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		},
		AuthLimiter: limiter,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Logger:      log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
