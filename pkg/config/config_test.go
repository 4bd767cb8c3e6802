package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTTSServer, cfg.TTS.ServerURL)
	assert.Equal(t, DefaultTTSModel, cfg.TTS.Model)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.General.TimeoutSeconds)
	assert.Equal(t, DefaultSearchLimit, cfg.Search.Limit)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "general": {"output_dir": "/data/articles", "timeout_seconds": 30},
  "tts": {"voice": "af_nova", "format": "m4b"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/articles", cfg.General.OutputDir)
	assert.Equal(t, 30, cfg.General.TimeoutSeconds)
	assert.Equal(t, "af_nova", cfg.TTS.Voice)
	assert.Equal(t, "m4b", cfg.TTS.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultTTSServer, cfg.TTS.ServerURL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tts": {"voice": "from_file"}}`), 0o644))

	t.Setenv("WIKIBEE_TTS_VOICE", "from_env")
	t.Setenv("WIKIBEE_SEARCH_LIMIT", "3")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.TTS.Voice)
	assert.Equal(t, 3, cfg.Search.Limit)
}

func TestLoadFromMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.TTS.Voice = "af_bella"
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "af_bella", loaded.TTS.Voice)
}
