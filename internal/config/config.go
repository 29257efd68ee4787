package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
)

const (
	configFile        = "config.toml"
	defaultMaxEvents  = 1000
	defaultSplitRatio = 0.5
)

// FileConfig is the TOML file structure.
type FileConfig struct {
	Proto     string             `toml:"proto"`
	MaxEvents int                `toml:"max_events"`
	DBPath    string             `toml:"db"`
	UI        UIConfig           `toml:"ui"`
	Profiles  map[string]Profile `toml:"profiles"`
}

// UIConfig holds UI-related settings.
type UIConfig struct {
	SplitRatio  float64 `toml:"split_ratio"`
	CompactMode bool    `toml:"compact_mode"`
}

// Profile is a named connection profile.
type Profile struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
	Proto string `toml:"proto"`
}

// envConfig is the environment fallback for connection settings.
type envConfig struct {
	APIURL string `env:"QUEUESCOPE_API_URL"`
	Token  string `env:"QUEUESCOPE_TOKEN"`
}

// Config is the resolved runtime config after profile selection.
type Config struct {
	APIURL    string
	Token     string
	ProtoPath string
	DBPath    string
	MaxEvents int

	// UI
	DefaultSplitRatio float64
	CompactMode       bool

	// For saving UI prefs back
	ConfigDir string
}

// EventLimit returns MaxEvents, falling back to the default if unset.
func (c Config) EventLimit() int {
	if c.MaxEvents <= 0 {
		return defaultMaxEvents
	}
	return c.MaxEvents
}

// LoadFileConfig loads config.toml from configDir.
// Returns a zero-value FileConfig (no error) if the file doesn't exist.
func LoadFileConfig(configDir string) (*FileConfig, error) {
	path := filepath.Join(configDir, configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, err
	}

	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve merges a profile (by name) with global config and env vars into a runtime Config.
// If profileName is empty or not found, only global/env settings are used.
func (fc FileConfig) Resolve(profileName string, configDir string) Config {
	cfg := Config{
		ProtoPath: fc.Proto,
		DBPath:    fc.DBPath,
		ConfigDir: configDir,
	}

	// Max events
	cfg.MaxEvents = fc.MaxEvents
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = defaultMaxEvents
	}

	// UI defaults
	cfg.DefaultSplitRatio = fc.UI.SplitRatio
	if cfg.DefaultSplitRatio == 0 {
		cfg.DefaultSplitRatio = defaultSplitRatio
	}
	cfg.CompactMode = fc.UI.CompactMode

	// Apply profile overrides
	if p, ok := fc.Profiles[profileName]; ok {
		cfg.APIURL = p.URL
		cfg.Token = p.Token
		if p.Proto != "" {
			cfg.ProtoPath = p.Proto
		}
	}

	// Fall back to env vars for anything the profile didn't set
	var ec envConfig
	if err := env.Parse(&ec); err == nil {
		if cfg.APIURL == "" {
			cfg.APIURL = ec.APIURL
		}
		if cfg.Token == "" {
			cfg.Token = ec.Token
		}
	}

	return cfg
}

// SaveSplitRatio reads the existing TOML (if any), updates split_ratio, and writes back.
func SaveSplitRatio(configDir string, ratio float64) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(configDir, configFile)

	// Load existing config to preserve other fields
	cfg, err := LoadFileConfig(configDir)
	if err != nil {
		cfg = &FileConfig{}
	}
	cfg.UI.SplitRatio = ratio

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ProfileNames returns a sorted list of profile names.
func (fc FileConfig) ProfileNames() []string {
	names := make([]string, 0, len(fc.Profiles))
	for name := range fc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
