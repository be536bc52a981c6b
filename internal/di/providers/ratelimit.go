package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
)

// ProvideAuthRateLimiter provides the per-IP limiter for login and
// registration. A non-positive rate disables throttling.
func ProvideAuthRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.RateLimit.AuthPerMinute <= 0 {
		log.Info("Auth rate limiting disabled")
		return nil, nil
	}

	log.Info("Auth rate limiting enabled",
		"per_minute", cfg.RateLimit.AuthPerMinute,
		"burst", cfg.RateLimit.AuthBurst,
	)
	return ratelimit.PerMinute(cfg.RateLimit.AuthPerMinute, max(1, cfg.RateLimit.AuthBurst)), nil
}
