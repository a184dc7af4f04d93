package clearingconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ar-clearing/pkg/clearingconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `1000:
  country: Norway
  entities:
    NORWAY:
      type: company_code
      gl_accounts:
        write_off_common:
          number: 66791020
`)

	table, err := clearingconfig.LoadRules(path)
	require.NoError(t, err)

	entity, ok := table.Entity("1000", "NORWAY")
	require.True(t, ok)
	var account *clearingconfig.GLAccount = entity.GLAccounts.WriteOffCommon
	assert.Equal(t, int64(66791020), account.Number)
}

func TestLoadLogging_DanglingFormatter(t *testing.T) {
	path := writeFile(t, "log_config.yaml", `version: 1
handlers:
  console:
    class: StreamHandler
    formatter: missing
`)

	_, err := clearingconfig.LoadLogging(path)
	require.Error(t, err)
	assert.True(t, clearingconfig.IsReferenceError(err))
}

func TestLoadSettings_HolidayWildcard(t *testing.T) {
	path := writeFile(t, "appconfig.yaml", `clearing:
  rules_path: $appdir$\rules.yaml
  holidays:
    - 9999-01-01
`)

	s, err := clearingconfig.LoadSettings(path)
	require.NoError(t, err)
	require.Len(t, s.Clearing.Holidays, 1)

	var h clearingconfig.Holiday = s.Clearing.Holidays[0]
	assert.True(t, h.Wildcard())

	rules, err := s.WithAppDir("/opt/app").RulesPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/app", "rules.yaml"), rules)
}

func TestLoad_RequiresAppDir(t *testing.T) {
	_, err := clearingconfig.Load(clearingconfig.Paths{})
	assert.Error(t, err)
}
