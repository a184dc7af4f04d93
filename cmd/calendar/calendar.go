// Package calendar shows the holiday calendar and the clearing date it yields
package calendar

import (
	"fmt"
	"io"
	"time"

	"fjacquet/ar-clearing/cmd/root"
	"fjacquet/ar-clearing/internal/config"
	"fjacquet/ar-clearing/internal/dateutils"

	"github.com/spf13/cobra"
)

var date string

// Cmd represents the calendar command
var Cmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the holidays and the clearing date of a day",
	Long: `Print the holiday calendar of the settings projected onto the year of the
given day, the month ultimo and ultimo+1 business days, the date items
cleared on that day are posted with and the report folder of that day.

Holidays written with the year 9999 recur every year.

Example:
  arclear calendar --date 2023-09-01`,
	RunE: calendarFunc,
}

func init() {
	Cmd.Flags().StringVar(&date, "date", "", "Day to compute the clearing date for (YYYY-MM-DD, default today)")
}

func calendarFunc(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if date != "" {
		var err error
		day, err = time.ParseInLocation(dateutils.DateLayoutISO, date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date '%s': expected YYYY-MM-DD", date)
		}
	}

	p := root.Paths()
	settings, err := config.LoadSettings(p.Settings, root.GetLogger())
	if err != nil {
		return err
	}
	render(cmd.OutOrStdout(), settings, day)
	return nil
}

func render(out io.Writer, s *config.Settings, day time.Time) {
	holidays := s.Clearing.Holidays
	offDays := dateutils.OffDays(day, holidays)

	fmt.Fprintf(out, "Holidays in %d:\n", day.Year())
	if len(holidays) == 0 {
		fmt.Fprintln(out, "  none")
	}
	for _, h := range holidays {
		note := ""
		if h.Wildcard() {
			note = " (every year)"
		}
		off, ok := h.On(day.Year(), day.Location())
		if !ok {
			fmt.Fprintf(out, "  %s  not in %d%s\n", h, day.Year(), note)
			continue
		}
		fmt.Fprintf(out, "  %s  %s %s%s\n", h, off.Format(dateutils.DateLayoutISO), off.Weekday(), note)
	}

	fmt.Fprintf(out, "Day:           %s\n", day.Format(dateutils.DateLayoutISO))
	fmt.Fprintf(out, "Ultimo+1:      %s\n", dateutils.MonthUltimoPlusOne(day, offDays).Format(dateutils.DateLayoutISO))
	fmt.Fprintf(out, "Ultimo:        %s\n", dateutils.MonthUltimo(day, offDays).Format(dateutils.DateLayoutISO))

	fmt.Fprintf(out, "Clearing date: %s\n", s.ClearingDate(day).Format(dateutils.DateLayoutISO))
	if s.Reports.NetSubdirFormat != "" {
		fmt.Fprintf(out, "Report folder: %s\n", s.NetSubdir(day))
	}
}
