package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	// Logger is the bootstrap logger used until the logging configuration
	// file has been loaded
	Logger = logrus.New()
)

// ConfigureLogging sets up the bootstrap logger from LOG_LEVEL and
// LOG_FORMAT and returns it
func ConfigureLogging() *logrus.Logger {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		Logger.Warnf("Invalid log level '%s', using 'info'", logLevelStr)
		logLevel = logrus.InfoLevel
	}
	Logger.SetLevel(logLevel)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return Logger
}

// LoadEnv loads environment variables from a .env file in the working
// directory or the application root, if one exists
func LoadEnv(appDir string) {
	once.Do(func() {
		candidates := []string{".env"}
		if appDir != "" {
			candidates = append(candidates, filepath.Join(appDir, ".env"))
		}

		for _, envFile := range candidates {
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err != nil {
				Logger.Warnf("Error loading .env file: %v", err)
				return
			}
			Logger.Debugf("Loaded environment variables from %s", envFile)
			ConfigureLogging()
			return
		}
		Logger.Debug("No .env file found, using environment variables")
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
