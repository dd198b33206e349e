package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Egham-7/fetchstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
  log_level: debug
transport:
  kind: HTTP
  dial_timeout: 2s
streams:
  - name: counter
    url: ${COUNTER_URL:-http://localhost:8080/counter}
    timeout: 30s
    decode: SELECT
    select: count
    fail_on_status: true
    headers:
      Authorization: Bearer ${STREAM_TOKEN}
  - url: http://localhost:8080/counter?n=2
`

func TestParse(t *testing.T) {
	t.Run("should substitute variables and apply defaults", func(t *testing.T) {
		// given
		t.Setenv("STREAM_TOKEN", "secret")

		// when
		cfg, err := Parse([]byte(sampleConfig))

		// then
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, models.TransportHTTP, cfg.Transport.Kind)
		assert.Equal(t, 2*time.Second, cfg.Transport.DialTimeout)
		require.Len(t, cfg.Streams, 2)
		counter := cfg.Streams[0]
		assert.Equal(t, "http://localhost:8080/counter", counter.URL)
		assert.Equal(t, "Bearer secret", counter.Headers["Authorization"])
		assert.Equal(t, 30*time.Second, counter.Timeout)
		assert.Equal(t, models.DecodeSelect, counter.Decode)
		assert.True(t, counter.FailOnStatus)
		assert.Equal(t, "stream-2", cfg.Streams[1].Name)
		assert.False(t, cfg.Streams[1].FailOnStatus)
	})
	t.Run("should prefer the environment over defaults", func(t *testing.T) {
		t.Setenv("COUNTER_URL", "http://stream.local/counter")

		cfg, err := Parse([]byte(sampleConfig))

		require.NoError(t, err)
		stream, ok := cfg.Stream("counter")
		require.True(t, ok)
		assert.Equal(t, "http://stream.local/counter", stream.URL)
	})
	t.Run("should default server settings", func(t *testing.T) {
		cfg, err := Parse([]byte("streams: []"))

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
	})
	t.Run("should reject a stream without url", func(t *testing.T) {
		_, err := Parse([]byte("streams:\n  - name: empty\n"))

		assert.ErrorContains(t, err, "url is required")
	})
	t.Run("should reject duplicate names", func(t *testing.T) {
		_, err := Parse([]byte("streams:\n  - {name: a, url: \"http://x\"}\n  - {name: a, url: \"http://y\"}\n"))

		assert.ErrorContains(t, err, "duplicate name")
	})
	t.Run("should reject unknown transports", func(t *testing.T) {
		_, err := Parse([]byte("transport:\n  kind: smtp\n"))

		assert.ErrorContains(t, err, "unknown transport kind")
	})
	t.Run("should reject invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("streams: ["))

		assert.ErrorContains(t, err, "failed to parse YAML config")
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("should load a yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

		// when
		cfg, err := LoadFromFile(path)

		// then
		require.NoError(t, err)
		assert.Len(t, cfg.Streams, 2)
	})
	t.Run("should reject other extensions", func(t *testing.T) {
		_, err := LoadFromFile("config.json")

		assert.ErrorContains(t, err, "only .yaml and .yml")
	})
	t.Run("should reject path traversal", func(t *testing.T) {
		_, err := LoadFromFile("../config.yaml")

		assert.ErrorContains(t, err, "path traversal")
	})
	t.Run("should report a missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.ErrorContains(t, err, "failed to read config file")
	})
}

func TestLoadEnvFiles(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FETCHSTREAM_TEST_VAR=loaded\n"), 0o600))
	t.Setenv("FETCHSTREAM_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("FETCHSTREAM_TEST_VAR"))

	// when
	LoadEnvFiles([]string{filepath.Join(t.TempDir(), "missing.env"), path})

	// then
	assert.Equal(t, "loaded", os.Getenv("FETCHSTREAM_TEST_VAR"))
}
