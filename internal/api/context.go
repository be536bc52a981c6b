package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"golang.org/x/text/language"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

type contextKey string

const viewerKey contextKey = "viewer"

// ViewerFrom returns the request's viewer. Nil means anonymous.
func ViewerFrom(ctx context.Context) *domain.Viewer {
	v, _ := ctx.Value(viewerKey).(*domain.Viewer)
	return v
}

func withViewer(ctx context.Context, v *domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// sessionMiddleware resolves the session cookie into a viewer once per
// request. A stale or forged cookie is cleared and the request continues
// anonymously.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cookies.Name)
		if err != nil || cookie.Value == "" || s.services == nil || s.services.Sessions == nil {
			next.ServeHTTP(w, r)
			return
		}

		viewer, err := s.services.Sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			s.logger.Error("failed to resolve session", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if viewer == nil {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withViewer(r.Context(), viewer)))
	})
}

// languageMiddleware picks the response language from Accept-Language.
func (s *Server) languageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Match(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang.String())
		next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), lang)))
	})
}

func languageOf(r *http.Request) language.Tag {
	return i18n.FromContext(r.Context())
}

// apiCORS applies the CORS policy to the JSON catalog only.
func apiCORS(origins []string) func(http.Handler) http.Handler {
	policy := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return func(next http.Handler) http.Handler {
		withPolicy := policy(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/v1/") {
				withPolicy.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientInfo describes the caller for session bookkeeping. RealIP has
// already rewritten RemoteAddr from proxy headers.
func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookies.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
