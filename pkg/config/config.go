// Package config loads netui settings from a TOML file, defaults and
// NETUI_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every setting the binaries read.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Topology  TopologyConfig  `mapstructure:"topology"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	AWX       AWXConfig       `mapstructure:"awx"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Editor    EditorConfig    `mapstructure:"editor"`
}

// ServerConfig is where the relay listens and where editors reach it.
type ServerConfig struct {
	URL    string `mapstructure:"url"`
	Listen string `mapstructure:"listen"`
}

type TopologyConfig struct {
	ID int `mapstructure:"id"`
}

type InventoryConfig struct {
	ID int `mapstructure:"id"`
}

// AWXConfig points at the automation server.
type AWXConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

// EditorConfig sizes the canvas and the undo stack.
type EditorConfig struct {
	Width     int `mapstructure:"width"`
	Height    int `mapstructure:"height"`
	UndoLimit int `mapstructure:"undo_limit"`
}

// DefaultPath is the config file used when neither a path nor NETUI_CONFIG
// is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "netui", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "ws://localhost:8013/network_ui/topology")
	v.SetDefault("server.listen", ":8013")
	v.SetDefault("topology.id", 0)
	v.SetDefault("inventory.id", 1)
	v.SetDefault("awx.url", "http://localhost:8052")
	v.SetDefault("awx.token", "")
	v.SetDefault("store.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "netui", "netui.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("editor.width", 1024)
	v.SetDefault("editor.height", 768)
	v.SetDefault("editor.undo_limit", 1000)
}

// Load reads configuration. path overrides NETUI_CONFIG, which overrides
// DefaultPath. A missing file is not an error; a malformed one is.
// Environment variables use the NETUI_ prefix with dots as underscores.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("NETUI_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("NETUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to path, or to the Load order's default location when
// path is empty, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = os.Getenv("NETUI_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.listen", cfg.Server.Listen)
	v.Set("topology.id", cfg.Topology.ID)
	v.Set("inventory.id", cfg.Inventory.ID)
	v.Set("awx.url", cfg.AWX.URL)
	v.Set("awx.token", cfg.AWX.Token)
	v.Set("store.path", cfg.Store.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("tracing.enabled", cfg.Tracing.Enabled)
	v.Set("tracing.exporter", cfg.Tracing.Exporter)
	v.Set("tracing.endpoint", cfg.Tracing.Endpoint)
	v.Set("editor.width", cfg.Editor.Width)
	v.Set("editor.height", cfg.Editor.Height)
	v.Set("editor.undo_limit", cfg.Editor.UndoLimit)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
