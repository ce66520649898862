package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	tests := []struct {
		name string
		cfg  Config
		env  string
		want zerolog.Level
	}{
		{"default", Config{}, "", zerolog.InfoLevel},
		{"env", Config{}, "error", zerolog.ErrorLevel},
		{"quiet beats env", Config{Quiet: true}, "error", zerolog.WarnLevel},
		{"verbose beats quiet", Config{Verbose: true, Quiet: true}, "", zerolog.DebugLevel},
		{"level beats verbose", Config{Level: "trace", Verbose: true}, "", zerolog.TraceLevel},
		{"warning alias", Config{Level: "WARNING"}, "", zerolog.WarnLevel},
		{"off", Config{Level: "off"}, "", zerolog.Disabled},
		{"unknown", Config{Level: "loud"}, "", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, ResolveLevel(tt.cfg))
		})
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "run.log")

	logger := New(Config{Quiet: true, Format: "json", Output: path})
	logger.Info().Msg("hidden")
	logger.Warn().Str("key", "7").Msg("duplicate id")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"key":"7"`)
	assert.Contains(t, out, `"message":"duplicate id"`)
}

func TestAutoFormatOnFileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger := New(Config{Level: "info", Output: path})
	logger.Info().Msg("plain")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"plain"`)
}

func TestDiscard(t *testing.T) {
	_, ok := writer(Config{Output: "discard"}).(*os.File)
	assert.False(t, ok)
}
