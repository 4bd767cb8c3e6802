package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultTimeoutSeconds    = 15
	DefaultTTSTimeoutSeconds = 60
	DefaultTTSServer         = "http://localhost:8880/v1"
	DefaultTTSModel          = "kokoro"
	DefaultTTSVoice          = "af_sky+af_bella"
	DefaultTTSFormat         = "mp3"
	DefaultSearchLimit       = 10
)

// DefaultConfig returns the built-in settings: a local Kokoro-style
// TTS server, mp3 output, and history recording under the home dir.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		General: GeneralConfig{
			OutputDir:      filepath.Join(home, "wikibee"),
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		TTS: TTSConfig{
			ServerURL:      DefaultTTSServer,
			APIKey:         "not-needed",
			Model:          DefaultTTSModel,
			Voice:          DefaultTTSVoice,
			Format:         DefaultTTSFormat,
			TimeoutSeconds: DefaultTTSTimeoutSeconds,
		},
		Search: SearchConfig{
			Limit: DefaultSearchLimit,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(home, "wikibee", "history.db"),
		},
	}
}
