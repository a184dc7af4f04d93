package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// strftimeLayouts maps C strftime directives to Go reference layouts
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
}

// ValidateStrftime reports an error for directives Strftime cannot render
func ValidateStrftime(format string) error {
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return fmt.Errorf("dangling '%%' at end of date format '%s'", format)
		}
		i++
		c := format[i]
		if _, ok := strftimeLayouts[c]; !ok && c != '%' && c != 'j' && c != 'f' {
			return fmt.Errorf("unsupported directive '%%%c' in date format '%s'", c, format)
		}
	}
	return nil
}

// Strftime formats t using a C strftime-style format such as "%d-%b-%Y".
// Unknown directives are written through unchanged.
func Strftime(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		d := format[i]
		switch d {
		case '%':
			b.WriteByte('%')
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'f':
			fmt.Fprintf(&b, "%06d", t.Nanosecond()/1000)
		default:
			if layout, ok := strftimeLayouts[d]; ok {
				b.WriteString(t.Format(layout))
			} else {
				b.WriteByte('%')
				b.WriteByte(d)
			}
		}
	}
	return b.String()
}
