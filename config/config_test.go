package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/brokerdesk/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 9.0, cfg.Hours.Open)
	assert.Equal(t, 17.0, cfg.Hours.Close)
	assert.Equal(t, []string{"Cindy", "Leticia", "Kobe", "Kenzie"}, cfg.Brokers)
	assert.Equal(t, 90, cfg.OverdueThreshold)
	assert.Equal(t, ":8080", cfg.HTTP.Address())
	assert.Equal(t, 15*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "brokerdesk.db", filepath.Base(cfg.Database.Path))
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("TEST_DB_DIR", "/tmp/desk")
	path := writeConfig(t, `
timezone: America/New_York
brokers: [Amy, Ben]
overdue_threshold: 60
log_level: debug
database:
  path: ${TEST_DB_DIR}/desk.db
http:
  port: 9090
sync:
  timeout: 30s
  schedule: "*/30 * * * *"
  sources: [pipedrive]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, []string{"Amy", "Ben"}, cfg.Brokers)
	assert.Equal(t, 60, cfg.OverdueThreshold)
	assert.Equal(t, "/tmp/desk/desk.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "*/30 * * * *", cfg.Sync.Schedule)
	assert.Equal(t, 9.0, cfg.Hours.Open, "unset keys keep their defaults")

	settings := cfg.DefaultSettings()
	assert.Equal(t, []string{"Amy", "Ben"}, settings.Brokers)
	assert.Equal(t, 60, settings.OverdueThreshold)
}

func TestLoadCredentialEnvOverrides(t *testing.T) {
	t.Setenv(EnvPipedriveToken, " env-token ")
	t.Setenv(EnvRedtailUser, "env-user")
	t.Setenv(EnvRedtailKey, "")
	path := writeConfig(t, "redtail:\n  key: file-key\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, models.Credentials{
		RedtailUser:    "env-user",
		RedtailKey:     "file-key",
		PipedriveToken: "env-token",
	}, cfg.Credentials())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv(EnvConfigPath, writeConfig(t, "overdue_threshold: 30\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.OverdueThreshold)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"zero threshold", func(c *Config) { c.OverdueThreshold = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"inverted hours", func(c *Config) { c.Hours.Open, c.Hours.Close = 17, 9 }},
		{"quarter hour", func(c *Config) { c.Hours.Open = 9.25 }},
		{"bad schedule", func(c *Config) { c.Sync.Schedule = "every day" }},
		{"bad source", func(c *Config) { c.Sync.Sources = []string{"salesforce"} }},
		{"short timeout", func(c *Config) { c.Sync.Timeout = time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
