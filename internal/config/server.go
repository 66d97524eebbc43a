// ABOUTME: Configuration for the development API server
// ABOUTME: HTTP address, SQLite path, upload directory, JWT settings and the bootstrap admin

package config

import (
	"fmt"
	"time"
)

// DefaultTokenTTL is how long issued access tokens stay valid.
const DefaultTokenTTL = 8 * time.Hour

// MinJWTSecretLength is the minimum accepted HS256 secret size in bytes.
const MinJWTSecretLength = 32

// Server is the development backend configuration.
type Server struct {
	Server    HTTPConfig      `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Files     FilesConfig     `yaml:"files" toml:"files"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Bootstrap BootstrapConfig `yaml:"bootstrap" toml:"bootstrap"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// HTTPConfig holds server address configuration
type HTTPConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// FilesConfig is where uploaded files are kept.
type FilesConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"-" toml:"-"`

	TokenTTLRaw string `yaml:"token_ttl" toml:"token_ttl"`
}

// BootstrapConfig creates the first ADMIN user on an empty database.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" toml:"admin_username"`
	AdminPassword string `yaml:"admin_password" toml:"admin_password"`
}

// LoadServer reads a server configuration file from the given path.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadServer(path string) (*Server, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Server{
		Server:   HTTPConfig{HTTPAddr: "127.0.0.1:8000"},
		Database: DatabaseConfig{Path: "./antecedentes.db"},
		Files:    FilesConfig{Dir: "./files"},
		Auth:     AuthConfig{TokenTTL: DefaultTokenTTL},
		Logging:  LoggingConfig{Level: "info", Format: "color"},
	}
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := parseDuration("auth.token_ttl", cfg.Auth.TokenTTLRaw, &cfg.Auth.TokenTTL); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Server) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Files.Dir == "" {
		return fmt.Errorf("files.dir is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinJWTSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf("bootstrap.admin_username and bootstrap.admin_password must be set together")
	}
	return validateLogging(c.Logging)
}
