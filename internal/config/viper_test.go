package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/obligations"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	testChdir(t, t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, "paycycle.db", config.Store.DSN)
	assert.Equal(t, "AUD", config.Forecast.Currency)
	assert.Equal(t, int64(2500), config.CreditCard.MinimumFloorCents)
	assert.Equal(t, int64(2), config.CreditCard.MinimumRatePercent)
	assert.Equal(t, int64(30), config.Anomaly.ThresholdPercent)
	assert.Equal(t, int64(1000), config.Anomaly.MinDeltaCents)
	assert.Equal(t, int64(1000), config.Anomaly.MinCurrentCents)
	assert.Equal(t, "@daily", config.Reconcile.Schedule)
	assert.Equal(t, ":8080", config.API.Address)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-1.5-flash", config.AI.Model)
	assert.Equal(t, 30, config.AI.TimeoutSeconds)

	assert.Equal(t, obligations.DefaultMinimumPaymentPolicy(), config.MinimumPaymentPolicy())
	assert.Equal(t, anomaly.DefaultPolicy(), config.AnomalyPolicy())
	assert.Equal(t, 30*time.Second, config.AITimeout())
	assert.Equal(t, ',', config.CSVDelimiter())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	testChdir(t, t.TempDir())

	testEnvVars := map[string]string{
		"PAYCYCLE_LOG_LEVEL":                       "debug",
		"PAYCYCLE_LOG_FORMAT":                      "json",
		"PAYCYCLE_STORE_DRIVER":                    "postgres",
		"PAYCYCLE_STORE_DSN":                       "postgres://localhost/paycycle?sslmode=disable",
		"PAYCYCLE_CREDIT_CARD_MINIMUM_FLOOR_CENTS": "3000",
		"PAYCYCLE_ANOMALY_THRESHOLD_PERCENT":       "50",
		"PAYCYCLE_RECONCILE_SCHEDULE":              "0 6 * * *",
		"PAYCYCLE_CSV_DELIMITER":                   ";",
		"PAYCYCLE_AI_ENABLED":                      "true",
		"PAYCYCLE_AI_MODEL":                        "gemini-1.5-pro",
		"GEMINI_API_KEY":                           "test-api-key",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "postgres", config.Store.Driver)
	assert.Equal(t, "postgres://localhost/paycycle?sslmode=disable", config.Store.DSN)
	assert.Equal(t, int64(3000), config.CreditCard.MinimumFloorCents)
	assert.Equal(t, int64(50), config.Anomaly.ThresholdPercent)
	assert.Equal(t, "0 6 * * *", config.Reconcile.Schedule)
	assert.Equal(t, ';', config.CSVDelimiter())
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
}

const testConfigYAML = `
log:
  level: "warn"
  format: "json"
forecast:
  currency: "NZD"
credit_card:
  minimum_floor_cents: 2000
  minimum_rate_percent: 3
anomaly:
  threshold_percent: 40
api:
  address: "127.0.0.1:9090"
`

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(testConfigYAML), 0600))
	testChdir(t, tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "NZD", config.Forecast.Currency)
	assert.Equal(t, obligations.MinimumPaymentPolicy{FloorCents: 2000, RatePercent: 3}, config.MinimumPaymentPolicy())
	assert.Equal(t, int64(40), config.AnomalyPolicy().ThresholdPercent)
	assert.Equal(t, int64(1000), config.AnomalyPolicy().MinDeltaCents)
	assert.Equal(t, "127.0.0.1:9090", config.API.Address)
}

func TestInitializeConfigFile_ExplicitPath(t *testing.T) {
	clearTestEnvVars(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0600))

	config, err := InitializeConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "NZD", config.Forecast.Currency)

	_, err = InitializeConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(testConfigYAML), 0600))
	testChdir(t, tempDir)

	t.Setenv("PAYCYCLE_LOG_LEVEL", "error")
	t.Setenv("PAYCYCLE_FORECAST_CURRENCY", "USD")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "USD", config.Forecast.Currency)
	assert.Equal(t, "json", config.Log.Format)
}

func validConfig() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", Format: "text"},
		Store:      StoreConfig{Driver: "sqlite", DSN: "paycycle.db"},
		CreditCard: CreditCardConfig{MinimumFloorCents: 2500, MinimumRatePercent: 2},
		Anomaly:    AnomalyConfig{ThresholdPercent: 30, MinDeltaCents: 1000, MinCurrentCents: 1000},
		Reconcile:  ReconcileConfig{Schedule: "@daily"},
		CSV:        CSVConfig{Delimiter: ","},
		AI:         AIConfig{TimeoutSeconds: 30},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, validateConfig(validConfig()))
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "invalid store driver"},
		{"empty dsn", func(c *Config) { c.Store.DSN = " " }, "store.dsn must not be empty"},
		{"negative floor", func(c *Config) { c.CreditCard.MinimumFloorCents = -1 }, "minimum_floor_cents"},
		{"rate over 100", func(c *Config) { c.CreditCard.MinimumRatePercent = 101 }, "minimum_rate_percent"},
		{"negative threshold", func(c *Config) { c.Anomaly.ThresholdPercent = -5 }, "threshold_percent"},
		{"negative minimum", func(c *Config) { c.Anomaly.MinDeltaCents = -5 }, "anomaly minimums"},
		{"bad schedule", func(c *Config) { c.Reconcile.Schedule = "every day" }, "invalid reconcile.schedule"},
		{"long delimiter", func(c *Config) { c.CSV.Delimiter = "abc" }, "CSV delimiter must be a single character"},
		{"AI without key", func(c *Config) { c.AI.Enabled = true }, "GEMINI_API_KEY required when AI is enabled"},
		{"AI timeout", func(c *Config) {
			c.AI.Enabled = true
			c.AI.APIKey = "k"
			c.AI.TimeoutSeconds = 0
		}, "ai.timeout_seconds must be between 1 and 300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"text format info level", "info", "text"},
		{"json format debug level", "debug", "json"},
		{"unknown level falls back", "loud", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			config.Log = LogConfig{Level: tt.level, Format: tt.format}
			assert.NotNil(t, ConfigureLoggingFromConfig(config))
		})
	}
}

func TestConfigureLogging_PrefixedWins(t *testing.T) {
	std := logrus.StandardLogger()
	prevLevel, prevFormatter := std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		std.SetLevel(prevLevel)
		std.SetFormatter(prevFormatter)
	})

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PAYCYCLE_LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PAYCYCLE_LOG_FORMAT", "")

	logger := ConfigureLogging()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, isText := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PAYCYCLE_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("PAYCYCLE_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PAYCYCLE_TEST_UNSET_VALUE", "fallback"))
}

// clearTestEnvVars blanks every variable the tests rely on; t.Setenv restores
// the originals when the test ends.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"PAYCYCLE_LOG_LEVEL",
		"PAYCYCLE_LOG_FORMAT",
		"PAYCYCLE_STORE_DRIVER",
		"PAYCYCLE_STORE_DSN",
		"PAYCYCLE_FORECAST_CURRENCY",
		"PAYCYCLE_CREDIT_CARD_MINIMUM_FLOOR_CENTS",
		"PAYCYCLE_CREDIT_CARD_MINIMUM_RATE_PERCENT",
		"PAYCYCLE_ANOMALY_THRESHOLD_PERCENT",
		"PAYCYCLE_ANOMALY_MIN_DELTA_CENTS",
		"PAYCYCLE_ANOMALY_MIN_CURRENT_CENTS",
		"PAYCYCLE_RECONCILE_SCHEDULE",
		"PAYCYCLE_API_ADDRESS",
		"PAYCYCLE_CSV_DELIMITER",
		"PAYCYCLE_AI_ENABLED",
		"PAYCYCLE_AI_MODEL",
		"PAYCYCLE_AI_TIMEOUT_SECONDS",
		"GEMINI_API_KEY",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
