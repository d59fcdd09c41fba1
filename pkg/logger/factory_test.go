package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("region", "eu")))

	log.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug is below the default level")

	log.Info("checkout created", logger.Tier("pro"))
	entry := decodeLine(t, buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "checkout created", entry["msg"])
	assert.Equal(t, "eu", entry["region"])
	assert.Equal(t, "pro", entry["tier"])
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		wantJSON  bool
		wantDebug bool
		wantEnv   string
	}{
		{env: "production", wantJSON: true, wantEnv: "production"},
		{env: "prod", wantJSON: true, wantEnv: "production"},
		{env: "staging", wantJSON: true, wantEnv: "staging"},
		{env: "development", wantDebug: true, wantEnv: "development"},
		{env: "local", wantDebug: true, wantEnv: "local"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "masky-api"), logger.WithOutput(buf))

			log.Debug("probe")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)
			buf.Reset()

			log.Info("probe")
			if tt.wantJSON {
				entry := decodeLine(t, buf)
				assert.Equal(t, "masky-api", entry["service"])
				assert.Equal(t, tt.wantEnv, entry["env"])
				return
			}
			assert.Contains(t, buf.String(), "service=masky-api")
			assert.Contains(t, buf.String(), "env="+tt.wantEnv)
		})
	}
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithEnvironment("production", "masky-api"),
		logger.WithConfig(logger.Config{Level: "debug", Format: "TEXT"}),
		logger.WithOutput(buf),
	)
	log.Debug("verbose")
	assert.True(t, strings.HasPrefix(buf.String(), "time="))
	assert.Contains(t, buf.String(), "level=DEBUG")

	assert.Panics(t, func() { logger.New(logger.WithConfig(logger.Config{Level: "loud"})) })
	assert.Panics(t, func() { logger.New(logger.WithConfig(logger.Config{Format: "xml"})) })
	assert.NotPanics(t, func() { logger.New(logger.WithConfig(logger.Config{})) })
}

func TestWithContextValue(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextValue("request_id", ctxKey{}),
	).With(logger.Component("billing"))

	log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "req-1"), "webhook applied")
	entry := decodeLine(t, buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "billing", entry["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "no request")
	assert.NotContains(t, decodeLine(t, buf), "request_id")
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decodeLine(t, buf)["msg"])
}
