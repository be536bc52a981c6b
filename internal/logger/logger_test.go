package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatByEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("book created", "book_id", "book-1")

			out := buf.String()
			if tt.wantJSON {
				assert.Contains(t, out, `"msg":"book created"`)
				assert.Contains(t, out, `"book_id":"book-1"`)
			} else {
				assert.Contains(t, out, "INF")
				assert.Contains(t, out, "book_id=book-1")
			}
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Format: "pretty", Writer: &buf})

	log.Info("hidden")
	log.Warn("image delete failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "image delete failed")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Format: "pretty", Writer: &buf})

	log.WithGroup("http").With("method", "POST").Debug("request", "status", 303)

	out := buf.String()
	assert.Contains(t, out, "http.method=POST")
	assert.Contains(t, out, "http.status=303")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithError(errors.New("boom")).
		WithField("user_id", "user-1").
		WithFields(map[string]any{"book_id": "book-2"}).
		Info("failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"user_id":"user-1"`)
	assert.Contains(t, out, `"book_id":"book-2"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
