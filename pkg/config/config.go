// Package config resolves runtime settings from, in rising precedence:
// built-in defaults, the JSON config file, and WIKIBEE_* environment
// variables. CLI flags are layered on top by the command layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type GeneralConfig struct {
	OutputDir      string `json:"output_dir" env:"WIKIBEE_OUTPUT_DIR"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"WIKIBEE_TIMEOUT"`
	LeadOnly       bool   `json:"lead_only" env:"WIKIBEE_LEAD_ONLY"`
	Verbose        bool   `json:"verbose" env:"WIKIBEE_VERBOSE"`
}

type TTSConfig struct {
	ServerURL      string `json:"server_url" env:"WIKIBEE_TTS_SERVER"`
	APIKey         string `json:"api_key" env:"WIKIBEE_TTS_API_KEY"`
	Model          string `json:"model" env:"WIKIBEE_TTS_MODEL"`
	Voice          string `json:"voice" env:"WIKIBEE_TTS_VOICE"`
	Format         string `json:"format" env:"WIKIBEE_TTS_FORMAT"`
	Normalize      bool   `json:"normalize" env:"WIKIBEE_TTS_NORMALIZE"`
	TextFile       bool   `json:"text_file" env:"WIKIBEE_TTS_TEXT_FILE"`
	Audio          bool   `json:"audio" env:"WIKIBEE_TTS_AUDIO"`
	HeadingPrefix  string `json:"heading_prefix" env:"WIKIBEE_TTS_HEADING_PREFIX"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"WIKIBEE_TTS_TIMEOUT"`
}

type SearchConfig struct {
	AutoSelect bool `json:"auto_select" env:"WIKIBEE_SEARCH_AUTO_SELECT"`
	Limit      int  `json:"limit" env:"WIKIBEE_SEARCH_LIMIT"`
}

type HistoryConfig struct {
	Enabled bool   `json:"enabled" env:"WIKIBEE_HISTORY_ENABLED"`
	Path    string `json:"path" env:"WIKIBEE_HISTORY_PATH"`
}

type Config struct {
	General GeneralConfig `json:"general"`
	TTS     TTSConfig     `json:"tts"`
	Search  SearchConfig  `json:"search"`
	History HistoryConfig `json:"history"`
}

// ConfigPath returns the standard config file location.
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "wikibee", "config.json"), nil
}

// Load resolves the effective configuration. A missing config file is
// not an error; a malformed one is.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path, used by tests and the
// --config flag.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as indented JSON, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
