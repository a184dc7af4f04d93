package logconfig

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const levelNotSet = "NOTSET"

var levelNames = map[string]logrus.Level{
	levelNotSet: logrus.TraceLevel,
	"DEBUG":     logrus.DebugLevel,
	"INFO":      logrus.InfoLevel,
	"WARNING":   logrus.WarnLevel,
	"WARN":      logrus.WarnLevel,
	"ERROR":     logrus.ErrorLevel,
	"CRITICAL":  logrus.FatalLevel,
	"FATAL":     logrus.FatalLevel,
}

// parseLevel maps a level name to its logrus threshold. An empty name
// means NOTSET.
func parseLevel(name string) (logrus.Level, bool) {
	if name == "" {
		return logrus.TraceLevel, true
	}
	lvl, ok := levelNames[strings.ToUpper(name)]
	return lvl, ok
}

func isNotSet(name string) bool {
	return name == "" || strings.EqualFold(name, levelNotSet)
}

// levelName is the name a record level is rendered with
func levelName(lvl logrus.Level) string {
	switch lvl {
	case logrus.TraceLevel, logrus.DebugLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.ErrorLevel:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func levelNumber(lvl logrus.Level) int {
	switch lvl {
	case logrus.TraceLevel, logrus.DebugLevel:
		return 10
	case logrus.InfoLevel:
		return 20
	case logrus.WarnLevel:
		return 30
	case logrus.ErrorLevel:
		return 40
	default:
		return 50
	}
}

// levelsUpTo returns every level at least as severe as threshold
func levelsUpTo(threshold logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, lvl := range logrus.AllLevels {
		if lvl <= threshold {
			out = append(out, lvl)
		}
	}
	return out
}
