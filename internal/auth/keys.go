// Package auth hashes passwords and seals session tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	keyLength    = 32
	keyHexLength = 64
	keyFileName  = "session.key"
)

// LoadOrGenerateKey returns the PASETO v4 symmetric key stored hex-encoded in
// <dataPath>/session.key, creating the file with a fresh random key if absent.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- key path is derived from the configured data path
	if raw, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(raw))
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid session key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid session key format: %w", err)
		}
		return key, nil
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save session key: %w", err)
	}

	return key, nil
}
