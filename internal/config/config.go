// Package config loads server configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates everything the server persists: the database, uploaded
// media, the search index and the session key.
type DataConfig struct {
	BasePath string
}

// DatabasePath is the SQLite database file.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "bookbazaar.db")
}

// MediaPath is the root directory for uploaded images.
func (d DataConfig) MediaPath() string {
	return filepath.Join(d.BasePath, "media")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds session configuration.
type AuthConfig struct {
	// SessionKey is the PASETO v4 symmetric key (32 bytes). Set by auth.LoadOrGenerateKey.
	SessionKey      []byte
	SessionDuration time.Duration
	CookieName      string
	CookieSecure    bool
}

// CORSConfig controls cross-origin access to the JSON API.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig throttles login and registration attempts per client IP.
type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

// LoadConfig loads configuration from os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and builds the configuration. Precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookbazaar", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database, media and search index")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	sessionDuration := fs.String("session-duration", "", "Session lifetime (default: 336h)")
	cookieSecure := fs.String("cookie-secure", "", "Mark the session cookie Secure (default: true in production)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated origins allowed to call /api/v1")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*port, "SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			CookieName: getConfigValue("", "SESSION_COOKIE_NAME", "bookbazaar_session"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getIntConfigValue("", "AUTH_RATE_PER_MINUTE", 20),
			AuthBurst:     getIntConfigValue("", "AUTH_RATE_BURST", 10),
		},
	}
	cfg.Auth.CookieSecure = getBoolConfigValue(*cookieSecure, "SESSION_COOKIE_SECURE", cfg.App.Environment == "production")

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*sessionDuration, "SESSION_DURATION", "336h", &cfg.Auth.SessionDuration},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty")
	}

	if c.Auth.SessionDuration <= 0 {
		return fmt.Errorf("session duration must be positive, got %s", c.Auth.SessionDuration)
	}

	if c.Auth.CookieName == "" {
		return errors.New("session cookie name cannot be empty")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path resolves to defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "bookbazaar"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value pairs from a .env file into the environment.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
