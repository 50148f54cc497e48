// Package config loads the predictor service configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultFile is looked up in the working directory, then its parent.
const DefaultFile = "config.yaml"

// Config holds all service configuration.
type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		Path      string `yaml:"path"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"model"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if c.Model.Path == "" {
		c.Model.Path = filepath.Join("models", "random_forest_model.json")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
}

// Load reads the YAML file at path, applies .env and environment overrides,
// then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file settings. A relative PREDICTOR_MODEL_PATH is taken
// from the working directory and made absolute; relative paths in the file
// stay relative to the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("PREDICTOR_MODEL_PATH"); v != "" {
		abs, err := filepath.Abs(v)
		if err != nil {
			return fmt.Errorf("invalid PREDICTOR_MODEL_PATH %q: %w", v, err)
		}
		c.Model.Path = abs
	}
	if v := os.Getenv("PREDICTOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PREDICTOR_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PREDICTOR_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREDICTOR_HTTP_PORT %q: %w", v, err)
		}
		c.Http.Port = port
	}
	return nil
}

func (c *Config) validate() error {
	var errs []string
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port %d out of range", c.Http.Port))
	}
	if c.Model.CacheSize < 0 {
		errs = append(errs, "model.cache_size cannot be negative")
	}
	if c.Http.MaxBodyBytes < 0 {
		errs = append(errs, "http.max_body_bytes cannot be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolvePath finds name in the working directory or its parent, so the
// binary can be started from cmd/ as well as the repository root.
// Relative paths read from the file are not rewritten.
func ResolvePath(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	parent := filepath.Join("..", name)
	if _, err := os.Stat(parent); err == nil {
		return parent
	}
	return name
}
