// Package config provides functionality for loading and accessing environment variables.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/paycycle/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file if one exists in the
// working directory or its parent. Variables already set are not overridden.
func LoadEnv() {
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			logrus.Warnf("Error loading .env file: %v", err)
			return
		}
		logrus.Debugf("Loaded environment variables from %s", envFile)
	})
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// ConfigureLoggingFromConfig builds the application logger from the Config.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapterFromLogger(logging.NewLogrus(config.Log.Level, config.Log.Format, nil))
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT (or their PAYCYCLE_
// forms) to the standard logrus logger. It runs before any configuration
// file has been read.
func ConfigureLogging() *logrus.Logger {
	level := GetEnv(EnvPrefix+"_LOG_LEVEL", GetEnv("LOG_LEVEL", "info"))
	format := GetEnv(EnvPrefix+"_LOG_FORMAT", GetEnv("LOG_FORMAT", "text"))
	configured := logging.NewLogrus(level, format, nil)

	std := logrus.StandardLogger()
	std.SetLevel(configured.GetLevel())
	std.SetFormatter(configured.Formatter)
	return std
}
