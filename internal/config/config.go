// Package config handles configuration loading and defaults for punch.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/punch/config.yaml).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"punch/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.punch)
	DataDir string `yaml:"data_dir,omitempty"`

	// Rounding controls the 15-minute rounding policy for session durations
	Rounding RoundingConfig `yaml:"rounding,omitempty"`

	// Theme customizes the watch view colors
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Sync configures git synchronization of the data directory
	Sync SyncConfig `yaml:"sync,omitempty"`
}

// RoundingConfig controls session duration rounding.
type RoundingConfig struct {
	// Enabled rounds stopped sessions to 15-minute buckets (default: true).
	// Manual entries are never rounded regardless of this setting.
	Enabled bool `yaml:"enabled,omitempty"`
}

// ThemeConfig defines color settings for the watch view.
type ThemeConfig struct {
	// Primary color for the active project (hex, e.g. "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for durations (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`
}

// SyncConfig defines git synchronization settings.
type SyncConfig struct {
	// Enabled enables/disables git sync
	Enabled bool `yaml:"enabled,omitempty"`

	// AutoCommit automatically commits changes after saves
	AutoCommit bool `yaml:"auto_commit,omitempty"`

	// AutoPush automatically pushes after each commit
	AutoPush bool `yaml:"auto_push,omitempty"`

	// CommitMessage is the commit message template ("auto" for auto-generated)
	CommitMessage string `yaml:"commit_message,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Rounding: RoundingConfig{Enabled: true},
		Theme: ThemeConfig{
			Primary: "#7C3AED", // Violet
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
		},
		Sync: SyncConfig{
			Enabled:       false,
			AutoCommit:    true,
			AutoPush:      false,
			CommitMessage: "auto",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".punch"
	}
	return filepath.Join(home, ".punch")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "punch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "punch")
}

func configPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults. If no config
// file exists, returns the default configuration.
func Load() (*Config, error) {
	path := configPath()
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse merges a raw YAML document over the defaults. Booleans are merged
// presence-aware so an explicit `enabled: false` is distinguishable from the
// field being absent.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; conservative merge if this fails

	if userCfg.DataDir != "" {
		cfg.DataDir = userCfg.DataDir
	}
	if userCfg.Theme.Primary != "" {
		cfg.Theme.Primary = userCfg.Theme.Primary
	}
	if userCfg.Theme.Accent != "" {
		cfg.Theme.Accent = userCfg.Theme.Accent
	}
	if userCfg.Theme.Muted != "" {
		cfg.Theme.Muted = userCfg.Theme.Muted
	}
	if userCfg.Sync.CommitMessage != "" {
		cfg.Sync.CommitMessage = userCfg.Sync.CommitMessage
	}

	if yamlHasPath(&doc, "rounding", "enabled") {
		cfg.Rounding.Enabled = userCfg.Rounding.Enabled
	}
	if yamlHasPath(&doc, "sync", "enabled") {
		cfg.Sync.Enabled = userCfg.Sync.Enabled
	}
	if yamlHasPath(&doc, "sync", "auto_commit") {
		cfg.Sync.AutoCommit = userCfg.Sync.AutoCommit
	}
	if yamlHasPath(&doc, "sync", "auto_push") {
		cfg.Sync.AutoPush = userCfg.Sync.AutoPush
	}

	return cfg, nil
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Kind == yaml.ScalarNode && n.Content[i].Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := configPath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path, expanding a leading ~.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(c.DataDir, "~/"))
		}
	}
	return c.DataDir
}
