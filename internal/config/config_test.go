package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFileConfig(dir)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadFileConfig() = nil for missing file")
	}
	if len(cfg.Profiles) != 0 {
		t.Errorf("Profiles = %v, want empty", cfg.Profiles)
	}
}

func TestLoadFileConfigParsesProfiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
max_events = 500
proto = "/tmp/schema.protoset"

[ui]
split_ratio = 0.6
compact_mode = true

[profiles.prod]
url = "https://queue.example.com"
token = "prod-token"

[profiles.staging]
url = "https://staging.example.com"
`)

	cfg, err := LoadFileConfig(dir)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if cfg.MaxEvents != 500 {
		t.Errorf("MaxEvents = %d, want 500", cfg.MaxEvents)
	}
	if cfg.UI.SplitRatio != 0.6 {
		t.Errorf("SplitRatio = %v, want 0.6", cfg.UI.SplitRatio)
	}
	if !cfg.UI.CompactMode {
		t.Error("CompactMode = false, want true")
	}
	if got := cfg.Profiles["prod"].URL; got != "https://queue.example.com" {
		t.Errorf("prod URL = %q", got)
	}
	if got := cfg.Profiles["staging"].Token; got != "" {
		t.Errorf("staging token = %q, want empty", got)
	}
}

func TestResolveProfile(t *testing.T) {
	fc := FileConfig{
		Proto: "/global.protoset",
		Profiles: map[string]Profile{
			"prod": {URL: "https://prod", Token: "tok", Proto: "/prod.protoset"},
		},
	}

	cfg := fc.Resolve("prod", "/cfg")
	if cfg.APIURL != "https://prod" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Token != "tok" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.ProtoPath != "/prod.protoset" {
		t.Errorf("ProtoPath = %q, want profile override", cfg.ProtoPath)
	}
	if cfg.ConfigDir != "/cfg" {
		t.Errorf("ConfigDir = %q", cfg.ConfigDir)
	}
}

func TestResolveEnvFallback(t *testing.T) {
	t.Setenv("QUEUESCOPE_API_URL", "https://from-env")
	t.Setenv("QUEUESCOPE_TOKEN", "env-token")

	fc := FileConfig{}
	cfg := fc.Resolve("", "/cfg")
	if cfg.APIURL != "https://from-env" {
		t.Errorf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env value", cfg.Token)
	}
}

func TestResolveProfileWinsOverEnv(t *testing.T) {
	t.Setenv("QUEUESCOPE_API_URL", "https://from-env")
	t.Setenv("QUEUESCOPE_TOKEN", "env-token")

	fc := FileConfig{
		Profiles: map[string]Profile{
			"prod": {URL: "https://prod", Token: "tok"},
		},
	}
	cfg := fc.Resolve("prod", "/cfg")
	if cfg.APIURL != "https://prod" {
		t.Errorf("APIURL = %q, profile should win over env", cfg.APIURL)
	}
	if cfg.Token != "tok" {
		t.Errorf("Token = %q, profile should win over env", cfg.Token)
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv("QUEUESCOPE_API_URL", "")
	t.Setenv("QUEUESCOPE_TOKEN", "")

	fc := FileConfig{}
	cfg := fc.Resolve("", "/cfg")
	if cfg.MaxEvents != defaultMaxEvents {
		t.Errorf("MaxEvents = %d, want default %d", cfg.MaxEvents, defaultMaxEvents)
	}
	if cfg.DefaultSplitRatio != defaultSplitRatio {
		t.Errorf("DefaultSplitRatio = %v, want default %v", cfg.DefaultSplitRatio, defaultSplitRatio)
	}
}

func TestEventLimit(t *testing.T) {
	if got := (Config{MaxEvents: 0}).EventLimit(); got != defaultMaxEvents {
		t.Errorf("EventLimit() = %d, want %d", got, defaultMaxEvents)
	}
	if got := (Config{MaxEvents: 42}).EventLimit(); got != 42 {
		t.Errorf("EventLimit() = %d, want 42", got)
	}
}

func TestSaveSplitRatioPreservesOtherFields(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
max_events = 250

[profiles.prod]
url = "https://prod"
`)

	if err := SaveSplitRatio(dir, 0.7); err != nil {
		t.Fatalf("SaveSplitRatio() error = %v", err)
	}

	cfg, err := LoadFileConfig(dir)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if cfg.UI.SplitRatio != 0.7 {
		t.Errorf("SplitRatio = %v, want 0.7", cfg.UI.SplitRatio)
	}
	if cfg.MaxEvents != 250 {
		t.Errorf("MaxEvents = %d, want preserved 250", cfg.MaxEvents)
	}
	if _, ok := cfg.Profiles["prod"]; !ok {
		t.Error("profiles lost on save")
	}
}

func TestSaveSplitRatioCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	if err := SaveSplitRatio(dir, 0.5); err != nil {
		t.Fatalf("SaveSplitRatio() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestProfileNamesSorted(t *testing.T) {
	fc := FileConfig{
		Profiles: map[string]Profile{
			"zeta": {}, "alpha": {}, "mid": {},
		},
	}
	names := fc.ProfileNames()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
