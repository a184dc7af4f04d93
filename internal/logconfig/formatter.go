package logconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"fjacquet/ar-clearing/internal/dateutils"
	"fjacquet/ar-clearing/internal/logging"

	"github.com/sirupsen/logrus"
)

// attrPattern matches %(name)<flags><width><conversion> and %%
var attrPattern = regexp.MustCompile(`%\(([^)]*)\)([-#0 +]*\d*(?:\.\d+)?)([sdfr])|%%`)

type attrKind int

const (
	kindString attrKind = iota
	kindInt
	kindFloat
)

// attributes lists the record attributes a format may reference
var attributes = map[string]attrKind{
	"asctime":   kindString,
	"created":   kindFloat,
	"filename":  kindString,
	"funcName":  kindString,
	"levelname": kindString,
	"levelno":   kindInt,
	"lineno":    kindInt,
	"message":   kindString,
	"module":    kindString,
	"msecs":     kindFloat,
	"name":      kindString,
	"pathname":  kindString,
	"process":   kindInt,
}

var callerAttributes = map[string]bool{
	"filename": true,
	"funcName": true,
	"lineno":   true,
	"module":   true,
	"pathname": true,
}

// packages whose frames are skipped when locating the caller of a log call
var loggingPackages = []string{
	reflect.TypeOf(logrus.Entry{}).PkgPath() + ".",
	reflect.TypeOf(logging.Field{}).PkgPath() + ".",
	reflect.TypeOf(PatternFormatter{}).PkgPath() + ".",
}

type segment struct {
	literal string
	attr    string
	verb    string
}

// PatternFormatter renders logrus entries with a %(attr)s style format
// string. Entry fields other than the logger name are appended as
// key=value pairs.
type PatternFormatter struct {
	format     string
	dateFormat string
	segments   []segment
	usesCaller bool
}

// NewPatternFormatter compiles format. An empty format renders the message
// only; an empty dateFormat renders asctime as "2006-01-02 15:04:05,000".
func NewPatternFormatter(format, dateFormat string) (*PatternFormatter, error) {
	if format == "" {
		format = DefaultFormat
	}
	if dateFormat != "" {
		if err := dateutils.ValidateStrftime(dateFormat); err != nil {
			return nil, err
		}
	}

	p := &PatternFormatter{format: format, dateFormat: dateFormat}
	last := 0
	for _, m := range attrPattern.FindAllStringSubmatchIndex(format, -1) {
		if m[0] > last {
			p.segments = append(p.segments, segment{literal: format[last:m[0]]})
		}
		last = m[1]

		if m[2] < 0 {
			p.segments = append(p.segments, segment{literal: "%"})
			continue
		}
		attr := format[m[2]:m[3]]
		flags := format[m[4]:m[5]]
		conv := format[m[6]:m[7]]

		kind, ok := attributes[attr]
		if !ok {
			return nil, fmt.Errorf("unknown record attribute '%s'", attr)
		}
		if conv == "d" && kind == kindString {
			return nil, fmt.Errorf("attribute '%s' cannot be formatted with %%d", attr)
		}
		if conv == "r" {
			conv = "q"
		}
		if callerAttributes[attr] {
			p.usesCaller = true
		}
		p.segments = append(p.segments, segment{attr: attr, verb: "%" + flags + conv})
	}
	if last < len(format) {
		p.segments = append(p.segments, segment{literal: format[last:]})
	}
	return p, nil
}

// Format implements logrus.Formatter
func (p *PatternFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var frame runtime.Frame
	if p.usesCaller {
		frame = callerFrame()
	}

	var b bytes.Buffer
	for _, seg := range p.segments {
		if seg.attr == "" {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(render(seg.verb, p.value(seg.attr, entry, frame)))
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != logging.FieldLogger {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (p *PatternFormatter) value(attr string, entry *logrus.Entry, frame runtime.Frame) interface{} {
	switch attr {
	case "asctime":
		return p.asctime(entry)
	case "created":
		return float64(entry.Time.UnixNano()) / 1e9
	case "filename":
		return filepath.Base(frame.File)
	case "funcName":
		fn := frame.Function
		if i := strings.LastIndex(fn, "/"); i >= 0 {
			fn = fn[i+1:]
		}
		if i := strings.Index(fn, "."); i >= 0 {
			fn = fn[i+1:]
		}
		return fn
	case "levelname":
		return levelName(entry.Level)
	case "levelno":
		return levelNumber(entry.Level)
	case "lineno":
		return frame.Line
	case "message":
		return entry.Message
	case "module":
		base := filepath.Base(frame.File)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "msecs":
		return float64(entry.Time.Nanosecond()) / 1e6
	case "name":
		if name, ok := entry.Data[logging.FieldLogger].(string); ok {
			return name
		}
		return RootLogger
	case "pathname":
		return frame.File
	case "process":
		return os.Getpid()
	}
	return ""
}

func (p *PatternFormatter) asctime(entry *logrus.Entry) string {
	if p.dateFormat != "" {
		return dateutils.Strftime(entry.Time, p.dateFormat)
	}
	return entry.Time.Format("2006-01-02 15:04:05") + fmt.Sprintf(",%03d", entry.Time.Nanosecond()/1e6)
}

// render formats v with a printf verb, converting between integer and
// float values the way %d and %f expect
func render(verb string, v interface{}) string {
	switch verb[len(verb)-1] {
	case 'd':
		if f, ok := v.(float64); ok {
			v = int64(f)
		}
	case 'f':
		if i, ok := v.(int); ok {
			v = float64(i)
		}
	case 'q':
		v = fmt.Sprint(v)
	}
	return fmt.Sprintf(verb, v)
}

// callerFrame returns the first stack frame outside the logging packages
func callerFrame() runtime.Frame {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !internalFrame(f.Function) {
			return f
		}
		if !more {
			return runtime.Frame{}
		}
	}
}

func internalFrame(function string) bool {
	if strings.HasPrefix(function, "runtime.") {
		return true
	}
	for _, pkg := range loggingPackages {
		if strings.HasPrefix(function, pkg) {
			return true
		}
	}
	return false
}
