// Package paths prints the files a clearing run reads and writes for one entity
package paths

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fjacquet/ar-clearing/cmd/root"
	"fjacquet/ar-clearing/internal/config"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var (
	entity string
	format string
)

// Cmd represents the paths command
var Cmd = &cobra.Command{
	Use:   "paths",
	Short: "Resolve the data and report paths of an entity",
	Long: `Expand the file name templates of the settings for one entity and print
the resulting paths, together with the rules, recovery and network report
locations.

Example:
  arclear paths --entity NORWAY`,
	RunE: pathsFunc,
}

func init() {
	Cmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity whose paths to resolve")
	Cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, csv)")
	_ = Cmd.MarkFlagRequired("entity")
}

func pathsFunc(cmd *cobra.Command, args []string) error {
	c, err := root.LoadContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	e, ok := c.GetRules().FindEntity(entity)
	if !ok {
		return fmt.Errorf("entity '%s' not found in the clearing rules", entity)
	}

	list, err := resolve(c.GetSettings(), c.GetPaths().Rules, config.Scope{Entity: e.Name, CompanyCode: e.CompanyCode}, time.Now())
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), list, format)
}

func resolve(s *config.Settings, rulesPath string, scope config.Scope, now time.Time) ([]config.NamedPath, error) {
	list := []config.NamedPath{{Key: "rules", Path: rulesPath}}

	recovery, err := s.RecoveryPath()
	if err != nil {
		return nil, err
	}
	list = append(list, config.NamedPath{Key: "recovery", Path: recovery})

	files, err := s.EntityFiles(scope)
	if err != nil {
		return nil, err
	}
	list = append(list, files...)

	if s.Reports.NetDir != "" {
		dir, err := s.NetReportDir(now)
		if err != nil {
			return nil, err
		}
		list = append(list, config.NamedPath{Key: "net_report_dir", Path: dir})
	}
	return list, nil
}

func write(out io.Writer, list []config.NamedPath, format string) error {
	switch format {
	case "csv":
		if err := gocsv.Marshal(list, out); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	case "text":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\n", p.Key, p.Path)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format '%s'", format)
	}
}
