// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/obligations"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAYCYCLE_STORE_DSN.
const EnvPrefix = "PAYCYCLE"

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConfig selects the database.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// ForecastConfig holds presentation settings for forecasts.
type ForecastConfig struct {
	Currency string `mapstructure:"currency" yaml:"currency"`
}

// CreditCardConfig holds the minimum payment policy.
type CreditCardConfig struct {
	MinimumFloorCents  int64 `mapstructure:"minimum_floor_cents" yaml:"minimum_floor_cents"`
	MinimumRatePercent int64 `mapstructure:"minimum_rate_percent" yaml:"minimum_rate_percent"`
}

// AnomalyConfig holds the anomaly detection thresholds.
type AnomalyConfig struct {
	ThresholdPercent int64 `mapstructure:"threshold_percent" yaml:"threshold_percent"`
	MinDeltaCents    int64 `mapstructure:"min_delta_cents" yaml:"min_delta_cents"`
	MinCurrentCents  int64 `mapstructure:"min_current_cents" yaml:"min_current_cents"`
}

// ReconcileConfig schedules the BNPL catch-up job.
type ReconcileConfig struct {
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// CSVConfig configures transaction import and export.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// AIConfig configures the advisory collaborator.
type AIConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Forecast   ForecastConfig   `mapstructure:"forecast" yaml:"forecast"`
	CreditCard CreditCardConfig `mapstructure:"credit_card" yaml:"credit_card"`
	Anomaly    AnomalyConfig    `mapstructure:"anomaly" yaml:"anomaly"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile" yaml:"reconcile"`
	API        APIConfig        `mapstructure:"api" yaml:"api"`
	CSV        CSVConfig        `mapstructure:"csv" yaml:"csv"`
	AI         AIConfig         `mapstructure:"ai" yaml:"ai"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFile("")
}

// InitializeConfigFile initializes Viper configuration with hierarchical
// loading. A non-empty configFile replaces the search path.
func InitializeConfigFile(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.paycycle")
		v.AddConfigPath(".paycycle")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if !errors.As(err, &notFound) {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is always read from the unprefixed variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "paycycle.db")

	v.SetDefault("forecast.currency", "AUD")

	v.SetDefault("credit_card.minimum_floor_cents", obligations.DefaultMinimumFloorCents)
	v.SetDefault("credit_card.minimum_rate_percent", obligations.DefaultMinimumRatePercent)

	v.SetDefault("anomaly.threshold_percent", anomaly.DefaultThresholdPercent)
	v.SetDefault("anomaly.min_delta_cents", anomaly.DefaultMinDeltaCents)
	v.SetDefault("anomaly.min_current_cents", anomaly.DefaultMinCurrentCents)

	v.SetDefault("reconcile.schedule", "@daily")

	v.SetDefault("api.address", ":8080")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Store.Driver != "sqlite" && config.Store.Driver != "postgres" {
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite' or 'postgres')", config.Store.Driver)
	}
	if strings.TrimSpace(config.Store.DSN) == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}

	if config.CreditCard.MinimumFloorCents < 0 {
		return fmt.Errorf("credit_card.minimum_floor_cents must not be negative, got: %d", config.CreditCard.MinimumFloorCents)
	}
	if config.CreditCard.MinimumRatePercent < 0 || config.CreditCard.MinimumRatePercent > 100 {
		return fmt.Errorf("credit_card.minimum_rate_percent must be between 0 and 100, got: %d", config.CreditCard.MinimumRatePercent)
	}

	if config.Anomaly.ThresholdPercent < 0 {
		return fmt.Errorf("anomaly.threshold_percent must not be negative, got: %d", config.Anomaly.ThresholdPercent)
	}
	if config.Anomaly.MinDeltaCents < 0 || config.Anomaly.MinCurrentCents < 0 {
		return fmt.Errorf("anomaly minimums must not be negative")
	}

	if _, err := cron.ParseStandard(config.Reconcile.Schedule); err != nil {
		return fmt.Errorf("invalid reconcile.schedule %q: %w", config.Reconcile.Schedule, err)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// MinimumPaymentPolicy returns the configured credit card minimum policy.
func (c *Config) MinimumPaymentPolicy() obligations.MinimumPaymentPolicy {
	return obligations.MinimumPaymentPolicy{
		FloorCents:  c.CreditCard.MinimumFloorCents,
		RatePercent: c.CreditCard.MinimumRatePercent,
	}
}

// AnomalyPolicy returns the configured anomaly thresholds.
func (c *Config) AnomalyPolicy() anomaly.Policy {
	return anomaly.Policy{
		ThresholdPercent: c.Anomaly.ThresholdPercent,
		MinDeltaCents:    c.Anomaly.MinDeltaCents,
		MinCurrentCents:  c.Anomaly.MinCurrentCents,
	}
}

// AITimeout returns the advisory request timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// CSVDelimiter returns the configured delimiter as a rune.
func (c *Config) CSVDelimiter() rune {
	if c.CSV.Delimiter == "" {
		return ','
	}
	return rune(c.CSV.Delimiter[0])
}
