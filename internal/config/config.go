package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/kpm"
)

// Config holds service configuration.
type Config struct {
	XAppName string `env:"XAPP_NAME" envDefault:"nexran"`
	XAppID   string `env:"XAPP_ID" envDefault:"nexran"`

	E2TermURL  string `env:"E2TERM_URL" envDefault:"ws://127.0.0.1:38000/e2"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"false"`

	KPMIntervalIndex int  `env:"KPM_INTERVAL_INDEX" envDefault:"18"`
	SliceStatus      bool `env:"SLICE_STATUS" envDefault:"false"`

	// DatabaseURL enables the KPM archive when set.
	DatabaseURL   string `env:"DATABASE_URL"`
	DatabaseConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"4"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"internal/migrations"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	TransactionTimeout  time.Duration `env:"TRANSACTION_TIMEOUT" envDefault:"30s"`
	ReaperInterval      time.Duration `env:"REAPER_INTERVAL" envDefault:"5s"`
	RequestGroupTimeout time.Duration `env:"REQUEST_GROUP_TIMEOUT" envDefault:"8s"`

	// RequestorID pins the E2AP requestor id. Negative picks a random one.
	RequestorID int64 `env:"REQUESTOR_ID" envDefault:"-1"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.E2TermURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("E2TERM_URL must be a ws:// or wss:// url, got %q", c.E2TermURL))
	}
	if c.AdminAddr == "" {
		errs = append(errs, errors.New("ADMIN_ADDR is required"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if _, err := kpm.ParsePeriod(c.KPMIntervalIndex); err != nil {
		errs = append(errs, fmt.Errorf("KPM_INTERVAL_INDEX: %w", err))
	}
	if c.TransactionTimeout <= 0 {
		errs = append(errs, errors.New("TRANSACTION_TIMEOUT must be positive"))
	}
	if c.ReaperInterval <= 0 {
		errs = append(errs, errors.New("REAPER_INTERVAL must be positive"))
	}
	if c.RequestGroupTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_GROUP_TIMEOUT must be positive"))
	}
	if c.RequestorID > e2ap.MaxRequestorID {
		errs = append(errs, fmt.Errorf("REQUESTOR_ID must be at most %d", e2ap.MaxRequestorID))
	}
	return errors.Join(errs...)
}

// KPMPeriod is the validated KPM report period.
func (c *Config) KPMPeriod() kpm.Period {
	return kpm.Period(c.KPMIntervalIndex)
}

// Level is the parsed log level, info when unparseable.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
