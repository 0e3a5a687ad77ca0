package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":         slog.LevelDebug,
		"INFO":          slog.LevelInfo,
		"warning":       slog.LevelWarn,
		"error":         slog.LevelError,
		"logging.DEBUG": slog.LevelDebug,
		"logging.ERROR": slog.LevelError,
		"nonsense":      slog.LevelInfo,
		"":              slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, logger.ParseLevel(in), "level %q", in)
	}
}

func TestInit_WritesToAllWriters(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var a, b bytes.Buffer
	logger.Init(slog.LevelInfo, &a, &b)

	logger.Debug("hidden")
	logger.Warn("visible", "module", "test")

	require.NotContains(t, a.String(), "hidden")
	require.Contains(t, a.String(), "level=warn")
	require.Contains(t, a.String(), "module=test")
	require.Equal(t, a.String(), b.String())
}
