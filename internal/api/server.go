// Package api serves the marketplace over HTTP. Pages are plain chi handlers
// rendered through html/template; the moderation status endpoints, the
// read-only catalog under /api/v1 and /health are huma operations on the
// same router.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// DefaultCookieName is used when Options.Cookies.Name is empty.
const DefaultCookieName = "bookbazaar_session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Options configures a Server. Store, Search, Media, Tokens and AuthLimiter
// may be nil; the matching features are then disabled. Without Tokens no
// flash messages are shown. A nil Renderer uses the
// embedded templates.
type Options struct {
	Services    *Services
	Store       store.Store
	Search      *search.SearchIndex
	Media       *images.Storage
	Renderer    Renderer
	Tokens      *auth.SessionTokens
	Cookies     CookieConfig
	AuthLimiter *ratelimit.KeyedRateLimiter
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server handles all HTTP traffic.
type Server struct {
	router      *chi.Mux
	api         huma.API
	services    *Services
	store       store.Store
	search      *search.SearchIndex
	media       *images.Storage
	renderer    Renderer
	tokens      *auth.SessionTokens
	cookies     CookieConfig
	authLimiter *ratelimit.KeyedRateLimiter
	logger      *slog.Logger
}

// NewServer builds the router and registers every route.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Cookies.Name == "" {
		opts.Cookies.Name = DefaultCookieName
	}
	if opts.Renderer == nil {
		opts.Renderer = MustTemplateRenderer()
	}

	s := &Server{
		router:      chi.NewRouter(),
		services:    opts.Services,
		store:       opts.Store,
		search:      opts.Search,
		media:       opts.Media,
		renderer:    opts.Renderer,
		tokens:      opts.Tokens,
		cookies:     opts.Cookies,
		authLimiter: opts.AuthLimiter,
		logger:      opts.Logger,
	}

	// Middleware must be in place before the first route is added.
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if len(opts.CORSOrigins) > 0 {
		s.router.Use(apiCORS(opts.CORSOrigins))
	}
	s.router.Use(s.languageMiddleware)
	s.router.Use(s.sessionMiddleware)

	config := huma.DefaultConfig("BookBazaar API", "1.0.0")
	config.OpenAPIPath = "/api/openapi"
	config.DocsPath = "/api/docs"
	config.SchemasPath = "/api/schemas"
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"session": {
			Type: "apiKey",
			In:   "cookie",
			Name: opts.Cookies.Name,
		},
	}
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerRoutes() {
	// JSON
	s.registerHealthRoutes()
	s.registerCatalogAPIRoutes()
	s.registerModerationRoutes()

	// Pages
	s.registerMediaRoutes()
	s.registerBookRoutes()
	s.registerCommentRoutes()
	s.registerUserRoutes()

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/books/", http.StatusFound)
	})
	s.router.NotFound(s.handleNotFound)
}
