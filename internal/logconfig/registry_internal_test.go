package logconfig

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMaxSizeMiB(t *testing.T) {
	assert.Equal(t, 0, maxSizeMiB(0))
	assert.Equal(t, 1, maxSizeMiB(10))
	assert.Equal(t, 1, maxSizeMiB(1<<20))
	assert.Equal(t, 2, maxSizeMiB(1<<20+1))
}

func TestParseLevel(t *testing.T) {
	lvl, ok := parseLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, logrus.WarnLevel, lvl)

	lvl, ok = parseLevel("")
	assert.True(t, ok)
	assert.Equal(t, logrus.TraceLevel, lvl)

	_, ok = parseLevel("LOUD")
	assert.False(t, ok)
}

func TestLevelsUpTo(t *testing.T) {
	assert.Equal(t, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}, levelsUpTo(logrus.ErrorLevel))
}
