// ABOUTME: Configuration for the operator CLI
// ABOUTME: API endpoint, session storage location, search paging and wizard lookup timing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the single default API endpoint.
const DefaultBaseURL = "http://localhost:8000"

// Client-side defaults.
const (
	DefaultAPITimeout      = 15 * time.Second
	DefaultPageSize        = 10
	DefaultLookupDebounce  = 500 * time.Millisecond
	DefaultLookupMinLength = 7
)

// Environment overrides honoured by LoadClient.
const (
	EnvAPIURL   = "ANTECEDENTES_API_URL"
	EnvLogLevel = "ANTECEDENTES_LOG_LEVEL"
	EnvConfig   = "ANTECEDENTES_CONFIG"
)

// Client is the operator CLI configuration.
type Client struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	Session SessionConfig `yaml:"session" toml:"session"`
	Search  SearchConfig  `yaml:"search" toml:"search"`
	Wizard  WizardConfig  `yaml:"wizard" toml:"wizard"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// APIConfig points the client at the REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// SessionConfig locates the local session storage.
type SessionConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// SearchConfig controls client-side pagination.
type SearchConfig struct {
	PageSize int `yaml:"page_size" toml:"page_size"`
}

// WizardConfig controls the identification lookup in the creation wizard.
type WizardConfig struct {
	LookupDebounce  time.Duration `yaml:"-" toml:"-"`
	LookupMinLength int           `yaml:"lookup_min_length" toml:"lookup_min_length"`

	LookupDebounceRaw string `yaml:"lookup_debounce" toml:"lookup_debounce"`
}

// DefaultClient returns the client configuration used when no file is given.
func DefaultClient() *Client {
	return &Client{
		API:     APIConfig{BaseURL: DefaultBaseURL, Timeout: DefaultAPITimeout},
		Session: SessionConfig{Path: defaultSessionPath()},
		Search:  SearchConfig{PageSize: DefaultPageSize},
		Wizard: WizardConfig{
			LookupDebounce:  DefaultLookupDebounce,
			LookupMinLength: DefaultLookupMinLength,
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "antecedentes", "session.db")
}

// LoadClient builds the client configuration. An empty path uses
// ANTECEDENTES_CONFIG if set, otherwise only defaults and environment
// overrides apply.
func LoadClient(path string) (*Client, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := DefaultClient()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Client) parseDurations() error {
	if err := parseDuration("api.timeout", c.API.TimeoutRaw, &c.API.Timeout); err != nil {
		return err
	}
	return parseDuration("wizard.lookup_debounce", c.Wizard.LookupDebounceRaw, &c.Wizard.LookupDebounce)
}

func (c *Client) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that all required configuration fields are present and valid.
func (c *Client) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive")
	}
	if c.Wizard.LookupDebounce < 0 {
		return fmt.Errorf("wizard.lookup_debounce must not be negative")
	}
	if c.Wizard.LookupMinLength < 1 {
		return fmt.Errorf("wizard.lookup_min_length must be at least 1")
	}
	return validateLogging(c.Logging)
}
