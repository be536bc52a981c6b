package auth

import "time"

// SessionClaims is the payload sealed inside a session cookie.
// v4.local tokens are encrypted, so clients cannot read or alter it.
type SessionClaims struct {
	SessionID  string    `json:"sid"`
	UserID     string    `json:"sub"`
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
}
