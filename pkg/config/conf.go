// Package config reads and writes the sctl app configuration file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/croswell/sctl/pkg/scorecard"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config represents the app config object: store selection, output
// format, and default scorecard parameters used by fit when no flags
// override them.
type Config struct {
	Driver    string           `yaml:"driver"`
	DSN       string           `yaml:"dsn,omitempty"`
	Format    string           `yaml:"format"`
	Scorecard scorecard.Config `yaml:"scorecard"`
}

func getDefaultConfig() *Config {
	return &Config{
		Driver:    "sqlite",
		Format:    "json",
		Scorecard: scorecard.DefaultConfig(),
	}
}

// Save writes the config into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads the app config from the directory, creating the
// directory and a default config file when missing.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current
// user. The created flag is set when the directory did not exist.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
