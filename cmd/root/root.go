// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/paycycle/internal/config"
	"fjacquet/paycycle/internal/container"
	"fjacquet/paycycle/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Driver     string
	DSN        string
}

var (
	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	// Log is the shared logger instance for commands
	Log logging.Logger = logging.Default()

	appContainer *container.Container
	appConfig    *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "paycycle",
		Short: "A CLI tool to forecast how much you can safely spend until payday.",
		Long: `paycycle is a CLI tool that projects your balance until the next payday.
It tracks recurring income, bills, buy-now-pay-later plans and credit card
minimums, and flags categories whose spending jumped month over month.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if appContainer != nil || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return initContainer(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close application resources")
			}
			appContainer = nil
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: $HOME/.paycycle/config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Driver, "driver", "", "Store driver (sqlite, postgres)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.DSN, "db", "", "Store DSN (SQLite file path or postgres URL)")
}

func initContainer(cmd *cobra.Command) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfigFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, SharedFlags)

	c, err := container.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appConfig = cfg
	appContainer = c
	Log = c.GetLogger()
	return nil
}

// applyFlagOverrides lets explicit flags win over file and environment values.
func applyFlagOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Driver != "" {
		cfg.Store.Driver = flags.Driver
	}
	if flags.DSN != "" {
		cfg.Store.DSN = flags.DSN
	}
}

// SetContainer installs a prebuilt container, bypassing configuration loading.
func SetContainer(c *container.Container) {
	appContainer = c
	if c != nil {
		appConfig = c.GetConfig()
		Log = c.GetLogger()
	}
}

// GetContainer returns the application container, or nil before a command
// has started.
func GetContainer() *container.Container {
	return appContainer
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return appConfig
}

// MustContainer returns the container or an error suitable for RunE.
func MustContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return appContainer, nil
}
