package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexran/nexran/internal/domain/kpm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:38000/e2", cfg.E2TermURL)
	assert.Equal(t, kpm.PeriodDefault, cfg.KPMPeriod())
	assert.Equal(t, 30*time.Second, cfg.TransactionTimeout)
	assert.Equal(t, int64(-1), cfg.RequestorID)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("E2TERM_URL", "wss://e2term.ric:38000/e2")
	t.Setenv("KPM_INTERVAL_INDEX", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUESTOR_ID", "1024")
	t.Setenv("REAPER_INTERVAL", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, kpm.Period(3), cfg.KPMPeriod())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, int64(1024), cfg.RequestorID)
	assert.Equal(t, 250*time.Millisecond, cfg.ReaperInterval)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("KPM_INTERVAL_INDEX", "fast")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad e2term scheme", func(c *Config) { c.E2TermURL = "http://e2term" }, "E2TERM_URL"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "LOG_LEVEL"},
		{"kpm index out of range", func(c *Config) { c.KPMIntervalIndex = 20 }, "KPM_INTERVAL_INDEX"},
		{"zero timeout", func(c *Config) { c.TransactionTimeout = 0 }, "TRANSACTION_TIMEOUT"},
		{"requestor too large", func(c *Config) { c.RequestorID = 70000 }, "REQUESTOR_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
