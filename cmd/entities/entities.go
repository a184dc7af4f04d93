// Package entities lists the entities a clearing run would process
package entities

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/ar-clearing/cmd/root"
	"fjacquet/ar-clearing/internal/rules"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var (
	entity string
	format string
)

// Cmd represents the entities command
var Cmd = &cobra.Command{
	Use:   "entities",
	Short: "List the entities selected by the clearing rules",
	Long: `List the entities a run would process. Inactive countries are skipped.
Without --entity every active entity is listed; with it only the named
entity is returned, even when it is marked inactive.

Example:
  arclear entities --format csv`,
	RunE: entitiesFunc,
}

func init() {
	Cmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity to look up")
	Cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, csv)")
}

func entitiesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.LoadContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	refs := c.GetRules().ActiveEntities(entity)
	if len(refs) == 0 {
		if entity != "" {
			return fmt.Errorf("entity '%s' not found in active countries", entity)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No entity to process detected")
		return nil
	}

	return write(cmd.OutOrStdout(), refs, format)
}

func write(out io.Writer, refs []rules.EntityRef, format string) error {
	switch format {
	case "csv":
		if err := gocsv.Marshal(refs, out); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	case "text":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ENTITY\tCOMPANY CODE\tCOUNTRY\tTYPE")
		for _, r := range refs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Entity, r.CompanyCode, r.Country, r.Type)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format '%s'", format)
	}
}
