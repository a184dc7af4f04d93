// Package clearingconfig is the public entry point for loading the
// configuration of the AR clearing robot: the logging configuration, the
// application settings and the per-country clearing rules.
package clearingconfig

import (
	"fjacquet/ar-clearing/internal/config"
	"fjacquet/ar-clearing/internal/configerror"
	"fjacquet/ar-clearing/internal/container"
	"fjacquet/ar-clearing/internal/dateutils"
	"fjacquet/ar-clearing/internal/logconfig"
	"fjacquet/ar-clearing/internal/rules"
)

type (
	// Bundle is the immutable set of loaded configuration files
	Bundle = container.Container
	// Paths locates the configuration files of a Bundle
	Paths = container.Paths

	Settings      = config.Settings
	Scope         = config.Scope
	NamedPath     = config.NamedPath
	LoggingConfig = logconfig.Config
	Registry      = logconfig.Registry
	Table         = rules.Table
	CountryRule   = rules.CountryRule
	EntityRule    = rules.EntityRule
	EntityRef     = rules.EntityRef
	GLAccount     = rules.GLAccount
	Warning       = rules.Warning
	Holiday       = dateutils.Holiday

	ParseError      = configerror.ParseError
	ValidationError = configerror.ValidationError
	ReferenceError  = configerror.ReferenceError
)

// Load reads every configuration file of a run
func Load(paths Paths) (*Bundle, error) {
	return container.NewContainer(paths)
}

// LoadSettings reads an application settings file
func LoadSettings(path string) (*Settings, error) {
	return config.LoadSettings(path, nil)
}

// LoadRules reads a clearing rules file
func LoadRules(path string) (*Table, error) {
	return rules.Load(path, nil)
}

// LoadLogging reads a logging configuration file
func LoadLogging(path string) (*LoggingConfig, error) {
	return logconfig.Load(path)
}

// Error classification helpers, usable on joined and wrapped errors
var (
	IsParseError      = configerror.IsParseError
	IsValidationError = configerror.IsValidationError
	IsReferenceError  = configerror.IsReferenceError
)
