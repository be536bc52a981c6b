package api

import (
	"math"
	"net/http"
	"strconv"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
)

// rateLimitAuth throttles login and registration posts per client IP.
// A nil limiter lets everything through.
func (s *Server) rateLimitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if !s.authLimiter.Allow(key) {
			s.logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
			seconds := max(1, int(math.Ceil(s.authLimiter.RetryAfter(key).Seconds())))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			s.renderError(w, r, &domainerrors.Error{Code: domainerrors.CodeRateLimited, Message: i18n.MsgTooManyAttempts})
			return
		}

		next.ServeHTTP(w, r)
	})
}
