// Package config loads the server's TOML configuration document.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration document.
type Config struct {
	Root    string        `toml:"root"`
	Index   bool          `toml:"index"`
	Listen  ListenConfig  `toml:"listen"`
	Logging LoggingConfig `toml:"logging"`
}

type ListenConfig struct {
	Address  string `toml:"address"`
	TLSCert  string `toml:"tls_cert"`
	TLSKey   string `toml:"tls_key"`
	UseProxy bool   `toml:"proxy_protocol"`
}

type LoggingConfig struct {
	Debug    bool   `toml:"debug"`
	FilePath string `toml:"file"`
}

// Default returns a config with the fallback values:
// index-serving enabled (§9 Open Question, decided in DESIGN.md), plain
// HTTP on localhost.
func Default() Config {
	return Config{
		Index: true,
		Listen: ListenConfig{
			Address: "127.0.0.1:8080",
		},
	}
}

// Load reads and parses path into a Config seeded with Default() values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if cfg.Root == "" {
		return Config{}, fmt.Errorf("config %s: root is required", path)
	}
	if !filepath.IsAbs(cfg.Root) {
		abs, err := filepath.Abs(cfg.Root)
		if err != nil {
			return Config{}, fmt.Errorf("resolving root %q: %w", cfg.Root, err)
		}
		cfg.Root = abs
	}
	return cfg, nil
}
