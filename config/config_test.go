package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadFile(t *testing.T) {
	file := writeConfig(t, `
port: 8080
loglevel: debug
store: testdata/store.yaml
maxQueryDepth: 16
`)

	cfg, err := LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "testdata/store.yaml", cfg.Store)
	assert.Equal(t, 16, cfg.MaxQueryDepth)
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultMaxDepth, cfg.MaxQueryDepth)
	assert.Empty(t, cfg.Store)
}

func TestLoadFilePartial(t *testing.T) {
	file := writeConfig(t, "port: 9000\n")

	cfg, err := LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultMaxDepth, cfg.MaxQueryDepth)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nosuch.yaml"))
		assert.ErrorContains(t, err, "failed to read")
	})

	t.Run("empty file", func(t *testing.T) {
		file := writeConfig(t, "")
		_, err := LoadFile(file)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		file := writeConfig(t, "port: [not a number\n")
		_, err := LoadFile(file)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("invalid port", func(t *testing.T) {
		file := writeConfig(t, "port: 99999\n")
		_, err := LoadFile(file)
		assert.ErrorContains(t, err, "invalid port")
	})

	t.Run("invalid depth", func(t *testing.T) {
		file := writeConfig(t, "maxQueryDepth: -2\n")
		_, err := LoadFile(file)
		assert.ErrorContains(t, err, "depth")
	})
}
