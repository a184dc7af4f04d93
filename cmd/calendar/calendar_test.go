package calendar

import (
	"bytes"
	"strings"
	"testing"

	"fjacquet/ar-clearing/cmd/internal/clitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, day string) (string, error) {
	t.Helper()
	date = day
	t.Cleanup(func() { date = "" })

	out := &bytes.Buffer{}
	Cmd.SetOut(out)
	err := Cmd.RunE(Cmd, nil)
	return out.String(), err
}

func TestCalendarCommand_Metadata(t *testing.T) {
	assert.Equal(t, "calendar", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("date"))
}

func TestCalendarCommand_StartOfMonth(t *testing.T) {
	clitest.AppDir(t, nil)

	out, err := run(t, "2023-09-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Holidays in 2023:\n")
	assert.Contains(t, out, "  9999-01-01  2023-01-01 Sunday (every year)\n")
	assert.Contains(t, out, "  2023-04-07  2023-04-07 Friday\n")
	assert.Contains(t, out, "Ultimo+1:      2023-09-01\n")
	assert.Contains(t, out, "Ultimo:        2023-09-29\n")
	assert.Contains(t, out, "Clearing date: 2023-08-31\n")
	assert.Contains(t, out, "Report folder: 2023_09\n")
}

func TestCalendarCommand_MidMonth(t *testing.T) {
	clitest.AppDir(t, nil)

	out, err := run(t, "2023-09-13")
	require.NoError(t, err)
	assert.Contains(t, out, "Clearing date: 2023-09-13\n")
}

func TestCalendarCommand_HolidayOnUltimoPlusOne(t *testing.T) {
	clitest.AppDir(t, nil)

	// 2024-01-01 is a holiday, so ultimo+1 moves to the 2nd
	out, err := run(t, "2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Ultimo+1:      2024-01-02\n")
	assert.Contains(t, out, "Clearing date: 2023-12-29\n")
}

func TestCalendarCommand_LeapDayHoliday(t *testing.T) {
	clitest.AppDir(t, map[string]string{
		"appconfig.yaml": strings.Replace(clitest.Settings, "- 2023-04-07", "- 2024-02-29", 1),
	})

	out, err := run(t, "2025-03-03")
	require.NoError(t, err)
	assert.Contains(t, out, "  2024-02-29  not in 2025\n")
	assert.Contains(t, out, "Ultimo+1:      2025-03-03\n")
}

func TestCalendarCommand_InvalidDate(t *testing.T) {
	clitest.AppDir(t, nil)

	_, err := run(t, "01.09.2023")
	assert.EqualError(t, err, "invalid date '01.09.2023': expected YYYY-MM-DD")
}
