package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
)

const (
	configFileBase = "railsathi_config"

	DefaultQueryTimeout = 10 * time.Second
	DefaultTimezone     = "Asia/Kolkata"
	DefaultCacheTTL     = 2 * time.Minute
)

// ScheduleOverride replaces a train's stored journey duration and end time for
// runs starting on occurrences of RRule
type ScheduleOverride struct {
	TrainNo             string `yaml:"trainNo" validate:"required,numeric"`
	RRule               string `yaml:"rrule" validate:"required"`
	JourneyDurationDays int    `yaml:"journeyDurationDays" validate:"required,min=1"`
	EndTime             string `yaml:"endTime" validate:"required"`
}

// CacheConfig configures the optional Redis index cache. An empty address disables it.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redisAddr,omitempty" validate:"omitempty,hostname_port"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty" validate:"min=0"`
	TTL           time.Duration `yaml:"ttl,omitempty" validate:"min=0"`
}

// NotificationConfig configures the push notification service
type NotificationConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"baseURL,omitempty" validate:"required_if=Enabled true,omitempty,url"`
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"min=0"`
}

// MailConfig configures missing war room user alerts
type MailConfig struct {
	ServiceAccountFile string   `yaml:"serviceAccountFile,omitempty"`
	Sender             string   `yaml:"sender,omitempty" validate:"required_with=ServiceAccountFile,omitempty,email"`
	AlertRecipients    []string `yaml:"alertRecipients,omitempty" validate:"omitempty,dive,email"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL           string             `yaml:"databaseURL" validate:"required"`
	QueryTimeout          time.Duration      `yaml:"queryTimeout,omitempty" validate:"min=0"`
	Timezone              string             `yaml:"timezone,omitempty"`
	DefaultSupportContact string             `yaml:"defaultSupportContact" validate:"required,numeric,len=10"`
	Cache                 CacheConfig        `yaml:"cache,omitempty"`
	Notification          NotificationConfig `yaml:"notification,omitempty"`
	Mail                  MailConfig         `yaml:"mail,omitempty"`
	ScheduleOverrides     []ScheduleOverride `yaml:"scheduleOverrides,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from railsathi_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration with an environment suffix
// For example, env="uat" will look for "railsathi_config.uat.yaml" before "railsathi_config.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.QueryTimeout == 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
}

// Validate validates the configuration struct, the time zone, and the rrule and
// end time of each schedule override
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	for i, override := range cfg.ScheduleOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in scheduleOverrides[%d]: %w", i, err)
		}
		if _, err := journey.ParseTimeOfDay(override.EndTime); err != nil {
			return fmt.Errorf("invalid endTime in scheduleOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// Location returns the configured time zone, falling back to UTC if it cannot be loaded
func (c *Config) Location() *time.Location {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Overrides converts the configured schedule overrides for the routing package
func (c *Config) Overrides() ([]routing.ScheduleOverride, error) {
	overrides := make([]routing.ScheduleOverride, 0, len(c.ScheduleOverrides))
	for i, o := range c.ScheduleOverrides {
		override, err := routing.NewScheduleOverride(o.TrainNo, o.RRule, o.JourneyDurationDays, o.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduleOverrides[%d]: %w", i, err)
		}
		overrides = append(overrides, override)
	}
	return overrides, nil
}

// findConfigFile searches for the env specific config file, then railsathi_config.yaml,
// in the current directory and then the home directory
func findConfigFile(env string) (string, error) {
	var names []string
	if env != "" {
		names = append(names, fmt.Sprintf("%s.%s.yaml", configFileBase, env))
	}
	names = append(names, configFileBase+".yaml")

	homeDir, homeErr := os.UserHomeDir()

	for _, name := range names {
		// Check current directory
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}

		// Check home directory
		if homeErr != nil {
			continue
		}
		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	if homeErr != nil {
		return "", fmt.Errorf("failed to get home directory: %w", homeErr)
	}
	return "", fmt.Errorf("config file not found in current directory or home directory")
}
