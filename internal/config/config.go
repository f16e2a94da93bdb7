package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskdeck.db"
	DefaultLogName        = "taskdeck.log"
)

type Config struct {
	DBPath      string `toml:"db_path"`
	WebEnabled  bool   `toml:"web_enabled"`
	WebPort     int    `toml:"web_port"`
	LogPath     string `toml:"log_path"`
	LogLevel    string `toml:"log_level"`
	SearchLimit int    `toml:"search_limit"`
}

func Default() Config {
	return Config{WebPort: 8080, LogLevel: "info", SearchLimit: 5}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskdeck", DefaultConfigFileName), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Resolve fills paths and limits left empty, relative to the config file.
func (c *Config) Resolve(configPath string) {
	dir := filepath.Dir(configPath)
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, DefaultDBName)
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(dir, DefaultLogName)
	}
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 5
	}
}
