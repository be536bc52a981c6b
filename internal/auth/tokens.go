package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "bookbazaar-server"
	tokenAudience = "bookbazaar-web"
)

// ErrInvalidToken is returned for malformed, tampered or expired session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// SessionTokens seals session identifiers into opaque PASETO v4.local cookie values.
type SessionTokens struct {
	key paseto.V4SymmetricKey
}

// NewSessionTokens creates a sealer from a 32-byte symmetric key.
func NewSessionTokens(key []byte) (*SessionTokens, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("session key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &SessionTokens{key: k}, nil
}

// Seal encrypts the session reference into a token valid until expiresAt.
func (t *SessionTokens) Seal(sessionID, userID string, expiresAt time.Time) string {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(userID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("sid", sessionID)

	return token.V4Encrypt(t.key, nil)
}

// Open decrypts and validates a token produced by Seal.
func (t *SessionTokens) Open(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(t.key, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// SealValue encrypts v for short-lived round trips through the client,
// such as a flash message. The purpose becomes the audience, so a value
// sealed for one purpose does not open as another or as a session.
func (t *SessionTokens) SealValue(purpose string, v any, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(purpose)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))
	if err := token.Set("val", v); err != nil {
		return "", err
	}

	return token.V4Encrypt(t.key, nil), nil
}

// OpenValue decrypts a token produced by SealValue with the same purpose
// into dst.
func (t *SessionTokens) OpenValue(purpose, raw string, dst any) error {
	if raw == "" {
		return ErrInvalidToken
	}

	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(purpose))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(t.key, raw, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := token.Get("val", dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
