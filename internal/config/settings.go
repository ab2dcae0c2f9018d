package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Credentials and quality
	Token  string `json:"token"`
	Format int    `json:"format"`

	// Output
	OutPath       string `json:"out_path"`
	TrackTemplate string `json:"track_template"`

	// Artifacts
	WriteCovers    bool `json:"write_covers"`
	KeepCovers     bool `json:"keep_covers"`
	OriginalCovers bool `json:"original_covers"`
	WriteLyrics    bool `json:"write_lyrics"`

	// Pacing between consecutive track downloads
	Sleep         bool    `json:"sleep"`
	SleepInterval float64 `json:"sleep_interval"`

	// Retry policy
	MaxRetries        int     `json:"max_retries"`
	RetryCooldown     float64 `json:"retry_cooldown"`
	RetryExponent     float64 `json:"retry_exponent"`
	RateLimitCooldown float64 `json:"rate_limit_cooldown"`

	// Resolution
	MaxConcurrentResolves int `json:"max_concurrent_resolves"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Format:        4,
		OutPath:       filepath.Join(homeDir, "Music", "Yandex Music"),
		TrackTemplate: "{track_num_pad}. {title}",

		WriteCovers:    true,
		KeepCovers:     false,
		OriginalCovers: false,
		WriteLyrics:    false,

		Sleep:         true,
		SleepInterval: 1.0,

		MaxRetries:        5,
		RetryCooldown:     0.5,
		RetryExponent:     2.0,
		RateLimitCooldown: 10.0,

		MaxConcurrentResolves: 4,
	}
}

// DefaultPath returns the default config file location under the user's
// config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "yandex-music-downloader", "config.json")
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings that would make a run meaningless.
func (s *Settings) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("no token provided")
	}
	if s.Format < int(model.TierAAC64) || s.Format > int(model.TierLossless) {
		return fmt.Errorf("format must be between %d and %d", model.TierAAC64, model.TierLossless)
	}
	if !model.TemplateIsValid(s.TrackTemplate) {
		return fmt.Errorf("invalid track template %q", s.TrackTemplate)
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	return nil
}

// Tier maps the numeric format setting to its quality tier. Call
// Validate first; out-of-range formats have no tier.
func (s *Settings) Tier() model.QualityTier {
	tier, _ := model.TierFromFormat(s.Format)
	return tier
}
