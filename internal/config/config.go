// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Mode is debug or release.
type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// Read scopes understood by RULES_READ_SCOPE.
const (
	ReadScopeAuthenticated = "authenticated"
	ReadScopeContributors  = "contributors"
)

const minSecretLength = 16

// Config is the full runtime configuration.
type Config struct {
	Port   int    `envconfig:"PORT" default:"8080"`
	DBPath string `envconfig:"DB_PATH" default:"data/softdesk.db"`
	Mode   Mode   `envconfig:"MODE" default:"debug"`
	JWT    JWT    `envconfig:"JWT"`
	Log    Log    `envconfig:"LOG"`
	GitHub GitHub `envconfig:"GITHUB"`
	Rules  Rules  `envconfig:"RULES"`
}

type JWT struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	TTL    time.Duration `envconfig:"TTL" default:"15m"`
}

type Log struct {
	Level      string `envconfig:"LEVEL" default:"info"`   // debug, info, warn, error
	FilePath   string `envconfig:"FILE_PATH"`              // release mode only
	MaxSize    int    `envconfig:"MAX_SIZE" default:"100"` // megabytes
	MaxBackups int    `envconfig:"MAX_BACKUPS" default:"5"`
	MaxAge     int    `envconfig:"MAX_AGE" default:"30"` // days
	Compress   bool   `envconfig:"COMPRESS"`
}

// GitHub sign-in is off when ClientID is empty.
type GitHub struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	CallbackURL  string `envconfig:"CALLBACK_URL"`
}

// Rules are the business rules an operator may toggle.
type Rules struct {
	// AssigneeMustContribute rejects issue assignees who are not contributors
	// of the issue's project.
	AssigneeMustContribute bool `envconfig:"ASSIGNEE_MUST_CONTRIBUTE" default:"true"`
	// ReadScope is "authenticated" (any signed-in user reads every project)
	// or "contributors" (only members read a project and what is under it).
	ReadScope string `envconfig:"READ_SCOPE" default:"authenticated"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: DB_PATH must not be empty")
	}
	if c.Mode != ModeDebug && c.Mode != ModeRelease {
		return fmt.Errorf("config: MODE must be %q or %q, got %q", ModeDebug, ModeRelease, c.Mode)
	}
	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	switch c.Rules.ReadScope {
	case ReadScopeAuthenticated, ReadScopeContributors:
	default:
		return fmt.Errorf("config: RULES_READ_SCOPE must be %q or %q, got %q",
			ReadScopeAuthenticated, ReadScopeContributors, c.Rules.ReadScope)
	}
	if c.GitHub.ClientID != "" && c.GitHub.ClientSecret == "" {
		return fmt.Errorf("config: GITHUB_CLIENT_SECRET is required when GITHUB_CLIENT_ID is set")
	}
	return nil
}
