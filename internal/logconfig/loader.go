package logconfig

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"fjacquet/ar-clearing/internal/configerror"
	"fjacquet/ar-clearing/internal/dateutils"
	"fjacquet/ar-clearing/internal/validation"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the logging configuration at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logging configuration: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a logging configuration. source names the
// input in errors.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configerror.NewParseError(source, err)
	}
	cfg.source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and compiles its formatters. Every
// problem found is reported, joined into one error.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return &configerror.ValidationError{
			Source: c.source,
			Field:  "version",
			Reason: fmt.Sprintf("unsupported version %d, expected %d", c.Version, SupportedVersion),
		}
	}

	var errs []error
	c.formatters = make(map[string]*PatternFormatter, len(c.Formatters))
	for _, name := range sortedKeys(c.Formatters) {
		f := c.Formatters[name]
		if f == nil {
			f = &Formatter{}
			c.Formatters[name] = f
		}
		if err := dateutils.ValidateStrftime(f.DateFormat); err != nil {
			errs = append(errs, c.invalid("formatters."+name, "datefmt", err.Error()))
			continue
		}
		pf, err := NewPatternFormatter(f.Format, f.DateFormat)
		if err != nil {
			errs = append(errs, c.invalid("formatters."+name, "format", err.Error()))
			continue
		}
		c.formatters[name] = pf
	}

	for _, name := range sortedKeys(c.Handlers) {
		errs = append(errs, c.validateHandler(name, c.Handlers[name])...)
	}

	for _, name := range sortedKeys(c.Loggers) {
		errs = append(errs, c.validateLogger("loggers."+name, c.Loggers[name])...)
	}
	if c.Root != nil {
		errs = append(errs, c.validateLogger(RootLogger, c.Root)...)
	}

	return errors.Join(errs...)
}

func (c *Config) validateHandler(name string, h *Handler) []error {
	location := "handlers." + name
	if h == nil {
		return []error{c.invalid(location, "", "handler record is empty")}
	}

	var errs []error
	if err := validation.Struct(h, c.source, location); err != nil {
		errs = append(errs, err)
	}
	if h.Class != "" {
		switch h.Kind() {
		case ClassStream:
			if h.Stream != "" && h.Stream != StreamStdout && h.Stream != StreamStderr {
				errs = append(errs, c.invalid(location, "stream", fmt.Sprintf("unsupported stream '%s'", h.Stream)))
			}
		case ClassFile, ClassRotatingFile:
			if h.Filename == "" {
				errs = append(errs, c.invalid(location, "filename", "field is required for file handlers"))
			}
		default:
			errs = append(errs, c.invalid(location, "class", fmt.Sprintf("unsupported handler class '%s'", h.Class)))
		}
	}
	if _, ok := parseLevel(h.Level); !ok {
		errs = append(errs, c.invalid(location, "level", fmt.Sprintf("unknown level '%s'", h.Level)))
	}
	if enc := strings.ToLower(strings.ReplaceAll(h.Encoding, "-", "")); enc != "" && enc != "utf8" {
		errs = append(errs, c.invalid(location, "encoding", fmt.Sprintf("unsupported encoding '%s', only utf-8 is written", h.Encoding)))
	}
	if h.Formatter != "" {
		if _, ok := c.Formatters[h.Formatter]; !ok {
			errs = append(errs, &configerror.ReferenceError{
				Source:   c.source,
				Location: location,
				Kind:     configerror.KindFormatter,
				Name:     h.Formatter,
			})
		}
	}
	return errs
}

func (c *Config) validateLogger(location string, l *Logger) []error {
	if l == nil {
		return nil
	}
	var errs []error
	if _, ok := parseLevel(l.Level); !ok {
		errs = append(errs, c.invalid(location, "level", fmt.Sprintf("unknown level '%s'", l.Level)))
	}
	for _, h := range l.Handlers {
		if _, ok := c.Handlers[h]; !ok {
			errs = append(errs, &configerror.ReferenceError{
				Source:   c.source,
				Location: location,
				Kind:     configerror.KindHandler,
				Name:     h,
			})
		}
	}
	return errs
}

func (c *Config) invalid(location, field, reason string) error {
	return &configerror.ValidationError{Source: c.source, Location: location, Field: field, Reason: reason}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
