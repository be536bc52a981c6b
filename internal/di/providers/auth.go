package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
)

// SessionKey wraps the session token key bytes.
type SessionKey []byte

// ProvideSessionKey loads or generates the session token key.
func ProvideSessionKey(i do.Injector) (SessionKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.SessionKey = key

	log.Info("Session key loaded",
		"session_duration", cfg.Auth.SessionDuration,
		"cookie_secure", cfg.Auth.CookieSecure,
	)

	return SessionKey(key), nil
}

// ProvideSessionTokens provides the PASETO session token sealer.
func ProvideSessionTokens(i do.Injector) (*auth.SessionTokens, error) {
	key := do.MustInvoke[SessionKey](i)
	return auth.NewSessionTokens(key)
}
