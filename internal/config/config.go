package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the config file and environment.
const (
	DefaultPreviewWidth  = 100
	DefaultPreviewHeight = 140
	DefaultPreviewScale  = 2.0
	DefaultUserAgent     = "booklets/1.0 (+https://github.com/blackwell-systems/booklets)"
	DefaultWikiAPIBase   = "https://en.wikipedia.org/api/rest_v1"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "booklets", "config.yml")
}

// Load reads the config from path, or from BOOKLETS_CONFIG, or from
// DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("catalog_path", "")
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("preview.width", DefaultPreviewWidth)
	v.SetDefault("preview.height", DefaultPreviewHeight)
	v.SetDefault("preview.scale", DefaultPreviewScale)
	v.SetDefault("preview.command", "pdftoppm")
	v.SetDefault("download.user_agent", DefaultUserAgent)
	v.SetDefault("download.concurrency", 4)
	v.SetDefault("wiki.api_base", DefaultWikiAPIBase)
	v.SetDefault("wiki.requests_per_second", 2.0)

	v.SetEnvPrefix("BOOKLETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("BOOKLETS_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.CacheDir = util.ExpandHome(cfg.CacheDir)
	cfg.CatalogPath = util.ExpandHome(cfg.CatalogPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the acquisition pipeline cannot work with.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must be set")
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	}
	if c.Preview.Scale <= 0 {
		return fmt.Errorf("preview scale must be positive, got %v", c.Preview.Scale)
	}
	return nil
}

// Save writes the config as YAML to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	return util.ExpandHome(path)
}

// defaultCacheDir is the scratch directory: process-local and not durable.
func defaultCacheDir() string {
	return filepath.Join(os.TempDir(), "booklets")
}
