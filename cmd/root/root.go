// Package root contains the root command for the application
package root

import (
	"os"

	"fjacquet/ar-clearing/internal/config"
	"fjacquet/ar-clearing/internal/container"
	"fjacquet/ar-clearing/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	AppDir    string
	LogConfig string
	Settings  string
	Rules     string
	LogFile   string
	Debug     bool
}

var (
	// Log is the bootstrap logger used before the logging configuration is loaded
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "arclear",
		Short: "Validate and inspect the configuration of the AR clearing robot.",
		Long: `arclear loads the logging configuration, the application settings and the
clearing rules of the AR clearing robot, reports every problem found in them
and shows how they resolve for a run.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv(SharedFlags.AppDir)
			Log = config.ConfigureLogging()
		},
	}

	// SharedFlags holds the values of the persistent flags
	SharedFlags = CommonFlags{}
)

// Init registers the persistent flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVarP(&SharedFlags.AppDir, "app-dir", "a", config.GetEnv("ARCLEAR_APP_DIR", ""), "Application directory replacing $appdir$ (default: current directory)")
	flags.StringVar(&SharedFlags.LogConfig, "log-config", "", "Logging configuration file (default: <app-dir>/log_config.yaml)")
	flags.StringVarP(&SharedFlags.Settings, "settings", "s", "", "Application settings file (default: <app-dir>/appconfig.yaml, else app_config.yaml)")
	flags.StringVarP(&SharedFlags.Rules, "rules", "r", "", "Clearing rules file (default: clearing.rules_path)")
	flags.StringVar(&SharedFlags.LogFile, "log-file", "", "Write file handler output to this file, emptied first")
	flags.BoolVarP(&SharedFlags.Debug, "debug", "d", false, "Log debug messages")
}

// Paths returns the configuration file locations selected by the flags
func Paths() container.Paths {
	appDir := SharedFlags.AppDir
	if appDir == "" {
		if wd, err := os.Getwd(); err == nil {
			appDir = wd
		}
	}
	return container.ResolvePaths(container.Paths{
		AppDir:    appDir,
		LogConfig: SharedFlags.LogConfig,
		Settings:  SharedFlags.Settings,
		Rules:     SharedFlags.Rules,
		LogFile:   SharedFlags.LogFile,
		Debug:     SharedFlags.Debug,
	})
}

// LoadContainer loads every configuration file selected by the flags
func LoadContainer() (*container.Container, error) {
	return container.NewContainer(Paths())
}

// GetLogger returns the bootstrap logger behind the Logger interface
func GetLogger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
