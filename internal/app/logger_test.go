package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerSelectsHandlerByFormat(t *testing.T) {
	jsonLogger := NewLogger(&Config{LogFormat: "json"})
	require.IsType(t, &slog.JSONHandler{}, jsonLogger.Handler())

	textLogger := NewLogger(&Config{LogFormat: "text"})
	require.IsType(t, &slog.TextHandler{}, textLogger.Handler())

	// Missing config falls back to text.
	require.IsType(t, &slog.TextHandler{}, NewLogger(nil).Handler())
}
