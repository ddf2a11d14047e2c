// Package config reads .poesync.yaml and the environment.
//
// Values are resolved in this order (highest first):
//
//  1. command line flags (applied by the caller)
//  2. environment variables (POEDITOR_API_TOKEN, POEDITOR_PROJECT_ID, ...)
//  3. .poesync.yaml in the project root
//  4. defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// FileName is the optional configuration file looked up in the project root.
const FileName = ".poesync.yaml"

// DefaultOutDir is the translations root relative to the project root.
const DefaultOutDir = "lib/locales"

// Config holds everything a sync run needs. It is passed explicitly to the
// components that use it.
type Config struct {
	// Token is the POEditor API token.
	Token string `yaml:"token" env:"POEDITOR_API_TOKEN"`
	// ProjectID is the POEditor project id.
	ProjectID string `yaml:"project_id" env:"POEDITOR_PROJECT_ID"`
	// OutDir is the translations root, relative to the project root unless absolute.
	OutDir string `yaml:"out_dir" env:"POESYNC_OUT_DIR" env-default:"lib/locales"`
	// FileName is the translation file inside each language directory.
	FileName string `yaml:"file_name" env:"POESYNC_FILE_NAME" env-default:"common.json"`
	// BaseURL is the POEditor API endpoint.
	BaseURL string `yaml:"base_url" env:"POEDITOR_BASE_URL" env-default:"https://api.poeditor.com/v2"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy" env:"POESYNC_PROXY"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" env:"POESYNC_TIMEOUT" env-default:"60s"`
	// Concurrency caps parallel language fetches (0 = all at once).
	Concurrency int `yaml:"concurrency" env:"POESYNC_CONCURRENCY"`
	// NoJournal disables the .poesync.lock sync journal.
	NoJournal bool `yaml:"no_journal" env:"POESYNC_NO_JOURNAL"`

	// Root is the project root the config was loaded from.
	Root string `yaml:"-"`
}

// Load reads .poesync.yaml from rootDir (if present) and the environment.
func Load(rootDir string) (*Config, error) {
	var cfg Config

	path := filepath.Join(rootDir, FileName)
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.Root = rootDir
	return &cfg, nil
}

// Validate checks that the values needed for remote calls are set.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("API token is required (--token or POEDITOR_API_TOKEN)")
	}
	if c.ProjectID == "" {
		return errors.New("project id is required (--id or POEDITOR_PROJECT_ID)")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// TranslationsDir returns the absolute translations root.
func (c *Config) TranslationsDir() string {
	dir := c.OutDir
	if dir == "" {
		dir = DefaultOutDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	root := c.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(root, dir)
}

// JournalDir returns the directory holding the sync journal.
func (c *Config) JournalDir() string {
	return c.Root
}
