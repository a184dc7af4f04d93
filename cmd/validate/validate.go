// Package validate checks every configuration file of a run
package validate

import (
	"fmt"

	"fjacquet/ar-clearing/cmd/root"
	"fjacquet/ar-clearing/internal/config"
	"fjacquet/ar-clearing/internal/validation"

	"github.com/spf13/cobra"
)

var (
	checkPaths bool
	strict     bool
)

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and check the logging configuration, settings and clearing rules",
	Long: `Load the logging configuration, the application settings and the clearing
rules the settings point to. Every parse, validation and reference error is
reported and the command exits with a non-zero status.

Consistency warnings of the clearing rules are listed but do not fail the
command unless --strict is given.

Example:
  arclear validate --app-dir /opt/arclear --check-paths`,
	RunE: validateFunc,
}

func init() {
	Cmd.Flags().BoolVar(&checkPaths, "check-paths", false, "Check that the configured directories and templates exist")
	Cmd.Flags().BoolVar(&strict, "strict", false, "Fail on clearing rule warnings")
}

func validateFunc(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	c, err := root.LoadContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	p := c.GetPaths()
	logCfg := c.GetLoggingConfig()
	settings := c.GetSettings()
	table := c.GetRules()

	entities := 0
	for _, code := range table.Codes() {
		country, _ := table.Country(code)
		entities += len(country.Entities)
	}

	fmt.Fprintf(out, "Logging configuration: %s (%d handlers, %d loggers)\n", p.LogConfig, len(logCfg.Handlers), len(logCfg.Loggers))
	fmt.Fprintf(out, "Settings: %s (SAP system %s, %d holidays)\n", p.Settings, settings.SAP.System, len(settings.Clearing.Holidays))
	fmt.Fprintf(out, "Clearing rules: %s (%d countries, %d entities)\n", p.Rules, len(table.Codes()), entities)

	warnings := table.Warnings()
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	if checkPaths {
		missing := 0
		for _, np := range configuredPaths(settings) {
			if err := validation.PathExists(np.Path); err != nil {
				fmt.Fprintf(out, "missing %s: %v\n", np.Key, err)
				missing++
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d configured paths do not exist", missing)
		}
	}

	if strict && len(warnings) > 0 {
		return fmt.Errorf("%d clearing rule warnings", len(warnings))
	}

	fmt.Fprintln(out, "Configuration is valid")
	return nil
}

// configuredPaths lists the directories and files the robot expects to
// find. Paths that fail to resolve were already rejected at load time.
func configuredPaths(s *config.Settings) []config.NamedPath {
	paths, _ := s.Directories()

	n := s.Mails.Notifications
	files := []struct{ key, value string }{
		{"sap.gui_path", s.SAP.GUIPath},
		{"mails.notifications.team_template_path", n.TeamTemplatePath},
		{"mails.notifications.user_template_path", n.UserTemplatePath},
	}
	for _, f := range files {
		if f.value == "" {
			continue
		}
		if p, err := s.ExpandPath(f.value, config.Scope{}); err == nil {
			paths = append(paths, config.NamedPath{Key: f.key, Path: p})
		}
	}
	return paths
}
