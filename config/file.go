// Package config loads newsprint settings from ~/.newsprint/config.yaml and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pevans/newsprint/crawler"
	"github.com/pevans/newsprint/export"
	"github.com/pevans/newsprint/fetcher"
	"github.com/pevans/newsprint/logging"
)

// DefaultBaseURL is the listing crawled when no base URL is given.
const DefaultBaseURL = "https://activation-service.jp/iso/column/type-9001/type-9001-beginner?type=category"

// StorageConfig represents storage configuration from config file.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// FetchConfig holds the request settings shared by the fetch profiles.
type FetchConfig struct {
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	UserAgent          string `yaml:"user_agent"`
	ListingUserAgent   string `yaml:"listing_user_agent"`
	Accept             string `yaml:"accept"`
	AcceptLanguage     string `yaml:"accept_language"`

	ListingTimeout time.Duration `yaml:"listing_timeout"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	ContentTimeout time.Duration `yaml:"content_timeout"`

	MaxBodySize int64 `yaml:"max_body_size"`
}

// FileConfig represents the structure of ~/.newsprint/config.yaml.
type FileConfig struct {
	BaseURL string         `yaml:"base_url"`
	Storage StorageConfig  `yaml:"storage"`
	Fetch   FetchConfig    `yaml:"fetch"`
	Crawl   crawler.Config `yaml:"crawl"`
	Export  export.Config  `yaml:"export"`
	Log     logging.Config `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *FileConfig {
	listing := fetcher.ListingConfig()
	probe := fetcher.ProbeConfig()
	content := fetcher.ContentConfig()

	return &FileConfig{
		BaseURL: DefaultBaseURL,
		Storage: StorageConfig{DSN: "newsprint.db"},
		Fetch: FetchConfig{
			InsecureSkipVerify: true,
			UserAgent:          content.UserAgent,
			ListingUserAgent:   listing.UserAgent,
			Accept:             listing.Accept,
			AcceptLanguage:     listing.AcceptLanguage,
			ListingTimeout:     listing.Timeout,
			ProbeTimeout:       probe.Timeout,
			ContentTimeout:     content.Timeout,
			MaxBodySize:        fetcher.DefaultMaxBodySize,
		},
		Crawl:  crawler.DefaultConfig(),
		Export: export.DefaultConfig(),
		Log:    logging.Config{Level: logging.DefaultLevel},
	}
}

// DefaultPath returns ~/.newsprint/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".newsprint", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path, or from DefaultPath when path
// is empty. Values missing from the file keep their defaults. Returns nil if
// the file doesn't exist (not an error). Returns error if the file exists but
// cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load returns the file configuration at path (or the defaults when there is
// no file) with environment overrides applied, and validates it.
func Load(path string) (*FileConfig, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from NEWSPRINT_DSN, NEWSPRINT_BASE_URL, and
// NEWSPRINT_LOG_LEVEL.
func (c *FileConfig) ApplyEnv() {
	c.Storage.DSN = getEnv("NEWSPRINT_DSN", c.Storage.DSN)
	c.BaseURL = getEnv("NEWSPRINT_BASE_URL", c.BaseURL)
	c.Log.Level = getEnv("NEWSPRINT_LOG_LEVEL", c.Log.Level)
}

// Validate checks that the configuration can be used.
func (c *FileConfig) Validate() error {
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn must not be empty")
	}
	if c.Fetch.ListingTimeout <= 0 || c.Fetch.ProbeTimeout <= 0 || c.Fetch.ContentTimeout <= 0 {
		return errors.New("fetch timeouts must be positive")
	}
	if c.Crawl.PageDelay < 0 {
		return errors.New("crawl.page_delay must not be negative")
	}
	if c.Crawl.MaxPages < 0 {
		return errors.New("crawl.max_pages must not be negative")
	}
	if c.Export.ItemDelay < 0 {
		return errors.New("export.item_delay must not be negative")
	}
	return nil
}

// Listing returns the fetch profile for listing pages.
func (f FetchConfig) Listing() fetcher.Config {
	return fetcher.Config{
		Timeout:            f.ListingTimeout,
		InsecureSkipVerify: f.InsecureSkipVerify,
		UserAgent:          f.ListingUserAgent,
		Accept:             f.Accept,
		AcceptLanguage:     f.AcceptLanguage,
		MaxBodySize:        f.MaxBodySize,
	}
}

// Probe returns the fetch profile for pagination probes.
func (f FetchConfig) Probe() fetcher.Config {
	return fetcher.Config{
		Timeout:            f.ProbeTimeout,
		InsecureSkipVerify: f.InsecureSkipVerify,
		UserAgent:          f.UserAgent,
		MaxBodySize:        f.MaxBodySize,
	}
}

// Content returns the fetch profile for article pages.
func (f FetchConfig) Content() fetcher.Config {
	return fetcher.Config{
		Timeout:            f.ContentTimeout,
		InsecureSkipVerify: f.InsecureSkipVerify,
		UserAgent:          f.UserAgent,
		MaxBodySize:        f.MaxBodySize,
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
