// Package clitest prepares an application directory for command tests.
package clitest

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ar-clearing/cmd/root"

	"github.com/stretchr/testify/require"
)

// LogConfig writes everything to a single file handler
const LogConfig = `version: 1
formatters:
  simple:
    format: "%(asctime)s %(levelname)-8s %(name)s: %(message)s"
    datefmt: "%d-%b-%Y %H:%M:%S"
handlers:
  file:
    class: logging.FileHandler
    level: DEBUG
    formatter: simple
    filename: log.log
loggers:
  master:
    level: INFO
    handlers: [file]
    propagate: false
`

// Settings points the rules to $appdir$\rules.yaml
const Settings = `sap:
  system: P25
clearing:
  rules_path: $appdir$\rules.yaml
  holidays:
    - 9999-01-01
    - 9999-12-25
    - 2023-04-07
data:
  data_dir: $appdir$\data
  dump_dir: $appdir$\dump
  temp_dir: $appdir$\temp
  fbl5n_data_export_name: fbl5n_$entity$.txt
  customer_data_name: customers_$comp_code$.xlsx
reports:
  local_dir: $appdir$\reports
  net_dir: $appdir$\net
  net_subdir_format: "%Y_%m"
  name: AR_Clearing_$comp_code$_$entity$.xlsx
mails:
  notifications:
    send: false
    subject: "AR clearing results $date$"
`

// Rules has one active and one inactive entity; the inactive one produces
// a consistency warning
const Rules = `1000:
  country: Norway
  active: true
  skipped_taxes: [X1]
  entities:
    NORWAY:
      type: company_code
      active: true
      valid_taxes: [A0]
      gl_accounts:
        write_off_common:
          number: 66791020
      accountants:
        - name: Kari
          surname: Nordmann
          mail: kari.nordmann@example.com
    NORWAY_WL:
      type: worklist
      active: false
      valid_taxes: [X1]
      gl_accounts:
        write_off_common:
          number: 66791021
`

// Directories are the working directories named in Settings
var Directories = []string{"data", "dump", "temp", "reports"}

// AppDir writes the configuration files into a temporary directory and
// points the shared flags at it for the duration of the test. files
// replaces individual files by name.
func AppDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	contents := map[string]string{
		"log_config.yaml": LogConfig,
		"appconfig.yaml":  Settings,
		"rules.yaml":      Rules,
	}
	for name, content := range files {
		contents[name] = content
	}
	for name, content := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	saved := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = saved })
	root.SharedFlags = root.CommonFlags{
		AppDir:  dir,
		LogFile: filepath.Join(dir, "run.log"),
	}
	return dir
}

// MakeDirectories creates the working directories inside dir
func MakeDirectories(t *testing.T, dir string) {
	t.Helper()
	for _, d := range Directories {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
}
