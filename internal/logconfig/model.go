// Package logconfig loads the versioned logging configuration (formatters,
// handlers and loggers) and builds logrus loggers from it.
package logconfig

import "strings"

// SupportedVersion is the only accepted value of the version key
const SupportedVersion = 1

// Handler classes
const (
	ClassStream       = "StreamHandler"
	ClassFile         = "FileHandler"
	ClassRotatingFile = "RotatingFileHandler"
)

// Stream targets of a StreamHandler
const (
	StreamStdout = "ext://sys.stdout"
	StreamStderr = "ext://sys.stderr"
)

// RootLogger is the name of the root logger
const RootLogger = "root"

// DefaultFormat is used by handlers without a formatter
const DefaultFormat = "%(message)s"

// Config is a parsed logging configuration
type Config struct {
	Version                int                   `yaml:"version"`
	DisableExistingLoggers bool                  `yaml:"disable_existing_loggers"`
	Formatters             map[string]*Formatter `yaml:"formatters"`
	Handlers               map[string]*Handler   `yaml:"handlers"`
	Loggers                map[string]*Logger    `yaml:"loggers"`
	Root                   *Logger               `yaml:"root"`

	source     string
	formatters map[string]*PatternFormatter
}

// Formatter describes how a record is rendered
type Formatter struct {
	Format     string `yaml:"format"`
	DateFormat string `yaml:"datefmt"`
}

// Handler routes records to a stream or a file
type Handler struct {
	Class       string `yaml:"class" validate:"required"`
	Level       string `yaml:"level"`
	Formatter   string `yaml:"formatter"`
	Stream      string `yaml:"stream"`
	Filename    string `yaml:"filename"`
	Mode        string `yaml:"mode" validate:"omitempty,oneof=a w"`
	MaxBytes    int64  `yaml:"maxBytes" validate:"gte=0"`
	BackupCount int    `yaml:"backupCount" validate:"gte=0"`
	Encoding    string `yaml:"encoding"`
}

// Logger binds a level and a set of handlers to a logger name
type Logger struct {
	Level     string   `yaml:"level"`
	Handlers  []string `yaml:"handlers"`
	Propagate *bool    `yaml:"propagate"`
}

// Propagates reports whether records also reach the root handlers.
// Propagation is on unless switched off explicitly.
func (l *Logger) Propagates() bool {
	return l.Propagate == nil || *l.Propagate
}

// Source returns the file the configuration was loaded from
func (c *Config) Source() string {
	return c.source
}

// Kind returns the handler class without its module prefix
func (h *Handler) Kind() string {
	class := strings.TrimPrefix(h.Class, "logging.handlers.")
	return strings.TrimPrefix(class, "logging.")
}

// WritesFile reports whether the handler writes to a file
func (h *Handler) WritesFile() bool {
	kind := h.Kind()
	return kind == ClassFile || kind == ClassRotatingFile
}
