package logconfig_test

import (
	"path/filepath"
	"testing"

	"fjacquet/ar-clearing/internal/configerror"
	"fjacquet/ar-clearing/internal/logconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RoundTrip(t *testing.T) {
	cfg, err := logconfig.Load(filepath.Join("testdata", "log_config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.False(t, cfg.DisableExistingLoggers)
	assert.Equal(t, filepath.Join("testdata", "log_config.yaml"), cfg.Source())

	require.Contains(t, cfg.Formatters, "simple")
	assert.Equal(t, "%(asctime)s %(levelname)-8s %(name)s: %(message)s", cfg.Formatters["simple"].Format)
	assert.Equal(t, "%d-%b-%Y %H:%M:%S", cfg.Formatters["simple"].DateFormat)

	require.Contains(t, cfg.Handlers, "file")
	file := cfg.Handlers["file"]
	assert.Equal(t, "logging.FileHandler", file.Class)
	assert.Equal(t, logconfig.ClassFile, file.Kind())
	assert.True(t, file.WritesFile())
	assert.Equal(t, "DEBUG", file.Level)
	assert.Equal(t, "simple", file.Formatter)
	assert.Equal(t, "log.log", file.Filename)
	assert.Equal(t, "utf-8", file.Encoding)

	rotating := cfg.Handlers["rotating"]
	assert.Equal(t, logconfig.ClassRotatingFile, rotating.Kind())
	assert.Equal(t, int64(1048577), rotating.MaxBytes)
	assert.Equal(t, 3, rotating.BackupCount)

	console := cfg.Handlers["console"]
	assert.False(t, console.WritesFile())
	assert.Equal(t, logconfig.StreamStdout, console.Stream)

	require.Contains(t, cfg.Loggers, "master")
	master := cfg.Loggers["master"]
	assert.Equal(t, "INFO", master.Level)
	assert.Equal(t, []string{"console", "file"}, master.Handlers)
	assert.False(t, master.Propagates())
	assert.True(t, cfg.Loggers["audit"].Propagates())

	require.NotNil(t, cfg.Root)
	assert.Equal(t, "WARNING", cfg.Root.Level)
	assert.Equal(t, []string{"console"}, cfg.Root.Handlers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := logconfig.Load(filepath.Join(t.TempDir(), "log_config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read logging configuration")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		check     func(error) bool
		errSubstr string
	}{
		{
			name:      "malformed yaml",
			content:   "version: 1\nhandlers: [console\n",
			check:     configerror.IsParseError,
			errSubstr: "failed to parse",
		},
		{
			name:      "missing version",
			content:   "handlers: {}\n",
			check:     configerror.IsValidationError,
			errSubstr: "unsupported version 0, expected 1",
		},
		{
			name: "logger names undefined handler",
			content: `version: 1
loggers:
  master:
    handlers: [missing]
`,
			check:     configerror.IsReferenceError,
			errSubstr: "unresolved handler reference 'missing' in log.yaml at 'loggers.master'",
		},
		{
			name: "root names undefined handler",
			content: `version: 1
root:
  handlers: [missing]
`,
			check:     configerror.IsReferenceError,
			errSubstr: "at 'root'",
		},
		{
			name: "handler names undefined formatter",
			content: `version: 1
handlers:
  console:
    class: StreamHandler
    formatter: fancy
`,
			check:     configerror.IsReferenceError,
			errSubstr: "unresolved formatter reference 'fancy' in log.yaml at 'handlers.console'",
		},
		{
			name: "unknown record attribute",
			content: `version: 1
formatters:
  bad:
    format: "%(when)s %(message)s"
`,
			check:     configerror.IsValidationError,
			errSubstr: "'formatters.bad.format': unknown record attribute 'when'",
		},
		{
			name: "string attribute as integer",
			content: `version: 1
formatters:
  bad:
    format: "%(message)d"
`,
			check:     configerror.IsValidationError,
			errSubstr: "cannot be formatted with %d",
		},
		{
			name: "unsupported date directive",
			content: `version: 1
formatters:
  bad:
    format: "%(asctime)s"
    datefmt: "%Q"
`,
			check:     configerror.IsValidationError,
			errSubstr: "'formatters.bad.datefmt'",
		},
		{
			name: "missing class",
			content: `version: 1
handlers:
  console:
    level: INFO
`,
			check:     configerror.IsValidationError,
			errSubstr: "'handlers.console.class': field is required",
		},
		{
			name: "unsupported class",
			content: `version: 1
handlers:
  smtp:
    class: logging.handlers.SMTPHandler
`,
			check:     configerror.IsValidationError,
			errSubstr: "unsupported handler class 'logging.handlers.SMTPHandler'",
		},
		{
			name: "file handler without filename",
			content: `version: 1
handlers:
  file:
    class: FileHandler
`,
			check:     configerror.IsValidationError,
			errSubstr: "'handlers.file.filename': field is required for file handlers",
		},
		{
			name: "unknown level",
			content: `version: 1
handlers:
  console:
    class: StreamHandler
    level: VERBOSE
`,
			check:     configerror.IsValidationError,
			errSubstr: "unknown level 'VERBOSE'",
		},
		{
			name: "unknown stream",
			content: `version: 1
handlers:
  console:
    class: StreamHandler
    stream: ext://sys.stdin
`,
			check:     configerror.IsValidationError,
			errSubstr: "unsupported stream 'ext://sys.stdin'",
		},
		{
			name: "unsupported encoding",
			content: `version: 1
handlers:
  file:
    class: FileHandler
    filename: log.log
    encoding: latin-1
`,
			check:     configerror.IsValidationError,
			errSubstr: "unsupported encoding 'latin-1'",
		},
		{
			name: "negative backup count",
			content: `version: 1
handlers:
  file:
    class: RotatingFileHandler
    filename: log.log
    backupCount: -1
`,
			check:     configerror.IsValidationError,
			errSubstr: "'handlers.file.backupCount': must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := logconfig.Parse([]byte(tt.content), "log.yaml")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	content := `version: 1
handlers:
  console:
    class: StreamHandler
    formatter: fancy
loggers:
  master:
    handlers: [console, missing]
`
	_, err := logconfig.Parse([]byte(content), "log.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'fancy'")
	assert.Contains(t, err.Error(), "'missing'")
}

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := logconfig.Parse([]byte("version: 1\n"), "log.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Handlers)
	assert.Nil(t, cfg.Root)
}

func TestParse_ErrorLine(t *testing.T) {
	_, err := logconfig.Parse([]byte("version: 1\nhandlers:\n  console:\n    class: [a, b]\n"), "log_config.yaml")

	var parseErr *configerror.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 4, parseErr.Line)
	assert.Contains(t, err.Error(), "log_config.yaml:4: failed to parse")
}
