package logconfig_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/ar-clearing/internal/logconfig"
	"fjacquet/ar-clearing/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestRegistry loads the test configuration with its file handlers
// pointed into a temporary directory
func buildTestRegistry(t *testing.T, opts logconfig.Options) (*logconfig.Registry, *bytes.Buffer, string) {
	t.Helper()
	cfg, err := logconfig.Load(filepath.Join("testdata", "log_config.yaml"))
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Handlers["file"].Filename = filepath.Join(dir, "log.log")
	cfg.Handlers["rotating"].Filename = filepath.Join(dir, "app.log")

	stdout := &bytes.Buffer{}
	opts.Stdout = stdout
	registry, err := logconfig.Build(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })
	return registry, stdout, dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuild_RoutesByHandler(t *testing.T) {
	registry, stdout, dir := buildTestRegistry(t, logconfig.Options{})

	log := registry.Logger("master")
	log.Debug("hidden")
	log.Info("Loading clearing rules", logging.F(logging.FieldEntity, "NORWAY"))

	assert.Equal(t, "Loading clearing rules entity=NORWAY\n", stdout.String())
	content := readFile(t, filepath.Join(dir, "log.log"))
	assert.Contains(t, content, "INFO     master: Loading clearing rules entity=NORWAY")
	assert.NotContains(t, content, "hidden")
}

func TestBuild_DebugOption(t *testing.T) {
	registry, stdout, dir := buildTestRegistry(t, logconfig.Options{Debug: true})

	registry.Logger("master").Debug("details")

	assert.Empty(t, stdout.String())
	assert.Contains(t, readFile(t, filepath.Join(dir, "log.log")), "DEBUG    master: details")
}

func TestBuild_PropagatesToRoot(t *testing.T) {
	registry, stdout, dir := buildTestRegistry(t, logconfig.Options{})

	audit := registry.Logger("audit")
	audit.Info("below root level")
	audit.Warn("careful")

	assert.Equal(t, "careful\n", stdout.String())
	assert.Contains(t, readFile(t, filepath.Join(dir, "app.log")), "WARNING  audit: careful")
}

func TestBuild_UnknownLoggerFallsBack(t *testing.T) {
	registry, stdout, dir := buildTestRegistry(t, logconfig.Options{})

	registry.Logger("master.rules").Info("child message")
	registry.Logger("other").Error("root message")

	assert.Equal(t, "child message\nroot message\n", stdout.String())
	assert.Contains(t, readFile(t, filepath.Join(dir, "log.log")), "master.rules: child message")
	assert.Equal(t, []string{"audit", "master"}, registry.Names())
}

func TestBuild_LogFileOverrideAndTruncate(t *testing.T) {
	cfg, err := logconfig.Load(filepath.Join("testdata", "log_config.yaml"))
	require.NoError(t, err)
	delete(cfg.Handlers, "rotating")
	cfg.Loggers["audit"].Handlers = nil

	logFile := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(logFile, []byte("previous run\n"), 0o644))

	registry, err := logconfig.Build(cfg, logconfig.Options{
		LogFile:  logFile,
		Truncate: true,
		Stdout:   &bytes.Buffer{},
	})
	require.NoError(t, err)

	registry.WriteHeader("master", []logconfig.HeaderLine{
		{Key: "Application name", Value: "AR Account Clearing"},
		{Key: "Log date", Value: "30-Aug-2023"},
	})
	require.NoError(t, registry.Close())

	content := readFile(t, logFile)
	assert.NotContains(t, content, "previous run")
	assert.Contains(t, content, "master: Application name: AR Account Clearing\n")
	assert.Contains(t, content, "master: Log date: 30-Aug-2023\n\n")
}

func TestBuild_LogFileKeepsRotatingHandlerApart(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	registry, _, dir := buildTestRegistry(t, logconfig.Options{
		LogFile:  logFile,
		Logger:   "master",
		Truncate: true,
	})

	audit := registry.Logger("audit")
	line := strings.Repeat("x", 1024)
	for i := 0; i < 2400; i++ {
		audit.Warn(line)
	}
	registry.Logger("master").Info("after rotation")
	require.NoError(t, registry.Close())

	content := readFile(t, logFile)
	assert.Contains(t, content, "master: after rotation")
	assert.NotContains(t, content, "audit:")

	backups, err := filepath.Glob(filepath.Join(dir, "app-*.log"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	_, err = os.Stat(filepath.Join(dir, "log.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_LogFileOnlyForApplicationLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	registry, _, dir := buildTestRegistry(t, logconfig.Options{
		LogFile:  logFile,
		Logger:   "audit",
		Truncate: true,
	})

	registry.Logger("master").Info("own file")
	require.NoError(t, registry.Close())

	assert.Contains(t, readFile(t, filepath.Join(dir, "log.log")), "master: own file")
	_, err := os.Stat(logFile)
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_CallerAttributes(t *testing.T) {
	cfg, err := logconfig.Parse([]byte(`version: 1
formatters:
  caller:
    format: "%(module)s.%(funcName)s: %(message)s"
handlers:
  console:
    class: StreamHandler
    formatter: caller
    stream: ext://sys.stderr
root:
  level: DEBUG
  handlers: [console]
`), "log.yaml")
	require.NoError(t, err)

	stderr := &bytes.Buffer{}
	registry, err := logconfig.Build(cfg, logconfig.Options{Stderr: stderr})
	require.NoError(t, err)

	registry.Logger("").Info("hello")
	assert.Equal(t, "registry_test.TestBuild_CallerAttributes: hello\n", stderr.String())
}

func TestBuild_UnwritableFile(t *testing.T) {
	cfg, err := logconfig.Parse([]byte(`version: 1
handlers:
  file:
    class: FileHandler
    filename: log.log
`), "log.yaml")
	require.NoError(t, err)
	cfg.Handlers["file"].Filename = filepath.Join(t.TempDir(), "missing", "log.log")

	_, err = logconfig.Build(cfg, logconfig.Options{})
	assert.ErrorContains(t, err, "failed to create handler 'file'")
}
