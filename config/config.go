// ABOUTME: Application configuration loaded from YAML with environment expansion
// ABOUTME: Provides defaults, credential overrides from the environment and validation
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/db"
	"github.com/harperreed/brokerdesk/models"
	"github.com/harperreed/brokerdesk/schedule"
	"github.com/harperreed/brokerdesk/sync"
)

// Environment variables that override stored credentials.
const (
	EnvPipedriveToken = "BROKERDESK_PIPEDRIVE_TOKEN"
	EnvRedtailUser    = "BROKERDESK_REDTAIL_USER"
	EnvRedtailKey     = "BROKERDESK_REDTAIL_KEY"
	EnvConfigPath     = "BROKERDESK_CONFIG"
)

// Log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// DefaultBrokers seeds the broker list on first run.
var DefaultBrokers = []string{"Cindy", "Leticia", "Kobe", "Kenzie"}

type Config struct {
	Timezone         string          `yaml:"timezone"`
	Hours            schedule.Hours  `yaml:"hours"`
	Brokers          []string        `yaml:"brokers"`
	OverdueThreshold int             `yaml:"overdue_threshold"`
	LogLevel         string          `yaml:"log_level"`
	Database         DatabaseConfig  `yaml:"database"`
	HTTP             HTTPConfig      `yaml:"http"`
	Pipedrive        PipedriveConfig `yaml:"pipedrive"`
	Redtail          RedtailConfig   `yaml:"redtail"`
	Sync             SyncConfig      `yaml:"sync"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

type PipedriveConfig struct {
	ProxyURL string `yaml:"proxy_url"`
	Token    string `yaml:"token"`
}

type RedtailConfig struct {
	BaseURL string `yaml:"base_url"`
	User    string `yaml:"user"`
	Key     string `yaml:"key"`
}

// SyncConfig controls CRM requests and the scheduled sync in serve mode.
// An empty schedule disables scheduled syncs.
type SyncConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Schedule string        `yaml:"schedule"`
	Sources  []string      `yaml:"sources"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Timezone:         dates.DefaultTimezone,
		Hours:            schedule.DefaultHours(),
		Brokers:          append([]string(nil), DefaultBrokers...),
		OverdueThreshold: models.DefaultOverdueThreshold,
		LogLevel:         LogLevelInfo,
		Database:         DatabaseConfig{Path: db.DefaultPath()},
		HTTP:             HTTPConfig{Port: 8080},
		Pipedrive:        PipedriveConfig{ProxyURL: sync.DefaultPipedriveProxy},
		Redtail:          RedtailConfig{BaseURL: sync.DefaultRedtailBaseURL},
		Sync: SyncConfig{
			Timeout: 15 * time.Second,
			Sources: []string{models.SourcePipedrive, models.SourceRedtail},
		},
	}
}

// DefaultPath returns the config file location under the XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "brokerdesk", "config.yaml")
}

// Load reads the config file at path over the defaults. An empty path uses
// $BROKERDESK_CONFIG or the XDG location, and a missing default file is not an
// error. A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := cfg.parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) parse(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), c)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPipedriveToken); v != "" {
		c.Pipedrive.Token = v
	}
	if v := os.Getenv(EnvRedtailUser); v != "" {
		c.Redtail.User = v
	}
	if v := os.Getenv(EnvRedtailKey); v != "" {
		c.Redtail.Key = v
	}
}

// Credentials returns the credentials configured outside the database.
func (c *Config) Credentials() models.Credentials {
	return models.Credentials{
		RedtailUser:    c.Redtail.User,
		RedtailKey:     c.Redtail.Key,
		PipedriveToken: strings.TrimSpace(c.Pipedrive.Token),
	}
}

// DefaultSettings seeds the desk settings before anything is stored.
func (c *Config) DefaultSettings() models.Settings {
	return models.Settings{
		Brokers:          append([]string(nil), c.Brokers...),
		OverdueThreshold: c.OverdueThreshold,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(validTimezone)),
		validation.Field(&c.OverdueThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.Required, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
	); err != nil {
		return err
	}
	if err := c.validateHours(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := validation.ValidateStruct(&c.HTTP,
		validation.Field(&c.HTTP.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := validation.ValidateStruct(&c.Pipedrive,
		validation.Field(&c.Pipedrive.ProxyURL, validation.Required),
	); err != nil {
		return fmt.Errorf("pipedrive: %w", err)
	}
	if err := validation.ValidateStruct(&c.Redtail,
		validation.Field(&c.Redtail.BaseURL, validation.Required),
	); err != nil {
		return fmt.Errorf("redtail: %w", err)
	}
	if err := validation.ValidateStruct(&c.Sync,
		validation.Field(&c.Sync.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Sync.Schedule, validation.By(validSchedule)),
		validation.Field(&c.Sync.Sources, validation.Each(validation.In(models.SourcePipedrive, models.SourceRedtail))),
	); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

func (c *Config) validateHours() error {
	h := c.Hours
	if h.Open < 0 || h.Close > 24 || h.Open >= h.Close {
		return fmt.Errorf("hours: open %g and close %g must satisfy 0 <= open < close <= 24", h.Open, h.Close)
	}
	if h.Open*2 != float64(int(h.Open*2)) || h.Close*2 != float64(int(h.Close*2)) {
		return fmt.Errorf("hours: open and close must fall on the half hour")
	}
	return nil
}

func validTimezone(value interface{}) error {
	tz, _ := value.(string)
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q", tz)
	}
	return nil
}

func validSchedule(value interface{}) error {
	spec, _ := value.(string)
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	return nil
}
