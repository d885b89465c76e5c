package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendAirtable = "airtable"
	BackendSQL      = "sql"
)

// AirtableConfig names the base and tables holding trips and signups
type AirtableConfig struct {
	APIKey       string `env:"API_KEY"`
	BaseID       string `env:"BASE_ID"`
	TripsTable   string `env:"TRIPS_TABLE"`
	SignupsTable string `env:"SIGNUPS_TABLE"`
	BaseURL      string `env:"BASE_URL" envDefault:"https://api.airtable.com/v0"`
	MaxRetries   int    `env:"MAX_RETRIES" envDefault:"3"`
}

// Config is the server configuration read from the environment
type Config struct {
	Port      string `env:"PORT" envDefault:"8000"`
	GinMode   string `env:"GIN_MODE"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	StoreBackend string         `env:"STORE_BACKEND" envDefault:"airtable"`
	Airtable     AirtableConfig `envPrefix:"AIRTABLE_"`
	DatabaseURL  string         `env:"DATABASE_URL"`
	DataPath     string         `env:"DATA_PATH" envDefault:"roster.db"`

	ProposalTTL           time.Duration `env:"PROPOSAL_TTL" envDefault:"10m"`
	ProposalSweepInterval time.Duration `env:"PROPOSAL_SWEEP_INTERVAL" envDefault:"1m"`
	UpdateConcurrency     int           `env:"UPDATE_CONCURRENCY" envDefault:"2"`
}

// LoadDotEnv loads the first .env found in the working directory or its
// parents. Existing environment variables win.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads .env files and parses the environment
func Load() (Config, error) {
	LoadDotEnv()
	return Parse()
}

// Parse reads the process environment without touching .env files
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	switch c.StoreBackend {
	case BackendAirtable:
		a := c.Airtable
		if a.APIKey == "" || a.BaseID == "" || a.TripsTable == "" || a.SignupsTable == "" {
			errs = append(errs, errors.New("AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TRIPS_TABLE and AIRTABLE_SIGNUPS_TABLE are required for the airtable backend"))
		}
	case BackendSQL:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.ProposalTTL <= 0 {
		errs = append(errs, errors.New("PROPOSAL_TTL must be positive"))
	}
	if c.ProposalSweepInterval <= 0 {
		errs = append(errs, errors.New("PROPOSAL_SWEEP_INTERVAL must be positive"))
	}
	if c.UpdateConcurrency <= 0 {
		errs = append(errs, errors.New("UPDATE_CONCURRENCY must be positive"))
	}
	return errors.Join(errs...)
}
