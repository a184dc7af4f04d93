// Package container loads the three configuration files of a run and
// hands them out as one immutable bundle.
package container

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/ar-clearing/internal/config"
	"fjacquet/ar-clearing/internal/logconfig"
	"fjacquet/ar-clearing/internal/logging"
	"fjacquet/ar-clearing/internal/rules"
)

// Default file names inside the application directory
const (
	DefaultLogConfigName = "log_config.yaml"
	DefaultSettingsName  = "appconfig.yaml"
	// AltSettingsName is used when DefaultSettingsName is absent
	AltSettingsName      = "app_config.yaml"
	DefaultLoggerName    = "master"
)

// Paths locates the configuration files. Empty fields fall back to the
// defaults inside AppDir; Rules defaults to clearing.rules_path.
type Paths struct {
	AppDir    string
	LogConfig string
	Settings  string
	Rules     string
	// LogFile replaces the FileHandler targets of the application logger
	// and starts empty
	LogFile string
	// LoggerName selects the application logger, "master" by default
	LoggerName string
	Debug      bool
}

// Container holds the loaded configuration.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	paths     Paths
	logConfig *logconfig.Config
	registry  *logconfig.Registry
	logger    logging.Logger
	settings  *config.Settings
	rules     *rules.Table
}

// NewContainer loads the logging configuration, builds the loggers, then
// loads the settings bound to AppDir and the clearing rules they point to.
// The first failing file aborts the whole load.
func NewContainer(paths Paths) (*Container, error) {
	if paths.AppDir == "" {
		return nil, fmt.Errorf("application directory cannot be empty")
	}
	paths = ResolvePaths(paths)

	logCfg, err := logconfig.Load(paths.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load logging configuration: %w", err)
	}
	registry, err := logconfig.Build(logCfg, logconfig.Options{
		LogFile:  paths.LogFile,
		Logger:   paths.LoggerName,
		Truncate: paths.LogFile != "",
		Debug:    paths.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	logger := registry.Logger(paths.LoggerName)

	c, err := load(paths, logger)
	if err != nil {
		_ = registry.Close()
		return nil, err
	}
	c.logConfig = logCfg
	c.registry = registry

	logger.Info("Container initialized successfully",
		logging.F("countries", len(c.rules.Codes())),
		logging.F("warnings", len(c.rules.Warnings())))
	return c, nil
}

// ResolvePaths fills the empty file locations with their defaults
func ResolvePaths(paths Paths) Paths {
	if paths.LogConfig == "" {
		paths.LogConfig = filepath.Join(paths.AppDir, DefaultLogConfigName)
	}
	if paths.Settings == "" {
		paths.Settings = filepath.Join(paths.AppDir, DefaultSettingsName)
		alt := filepath.Join(paths.AppDir, AltSettingsName)
		if _, err := os.Stat(paths.Settings); os.IsNotExist(err) && fileExists(alt) {
			paths.Settings = alt
		}
	}
	if paths.LoggerName == "" {
		paths.LoggerName = DefaultLoggerName
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func load(paths Paths, logger logging.Logger) (*Container, error) {
	loaded, err := config.LoadSettings(paths.Settings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settings := loaded.WithAppDir(paths.AppDir)

	if paths.Rules == "" {
		paths.Rules, err = settings.RulesPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve clearing rules path: %w", err)
		}
	}
	table, err := rules.Load(paths.Rules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load clearing rules: %w", err)
	}

	return &Container{
		paths:    paths,
		logger:   logger,
		settings: settings,
		rules:    table,
	}, nil
}

// GetPaths returns the resolved file locations
func (c *Container) GetPaths() Paths {
	return c.paths
}

// GetLogger returns the application logger
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetLoggingConfig returns the parsed logging configuration
func (c *Container) GetLoggingConfig() *logconfig.Config {
	return c.logConfig
}

// GetRegistry returns the loggers built from the logging configuration
func (c *Container) GetRegistry() *logconfig.Registry {
	return c.registry
}

// GetSettings returns the settings bound to the application directory
func (c *Container) GetSettings() *config.Settings {
	return c.settings
}

// GetRules returns the clearing rules table
func (c *Container) GetRules() *rules.Table {
	return c.rules
}

// Close releases the log files
func (c *Container) Close() error {
	if c.registry == nil {
		return nil
	}
	return c.registry.Close()
}
