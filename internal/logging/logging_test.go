package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	l := New(Config{Level: level, Output: buf, Prefix: "test"})
	l.sink.now = func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC)
	}
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelDebug)

	l.WithComponent("find").WithField("count", 3).Info("matched %s", "foo")
	assert.Equal(t, "2024-01-02T03:04:05.006 [INFO] test: matched foo {component=find, count=3}\n", buf.String())
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "[WARN]")

	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelError)
	child := l.WithField("k", "v")

	l.SetLevel(LevelDebug)
	child.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible {k=v}")
	assert.Equal(t, LevelDebug, child.Level())
}

func TestWithFieldReplacesKey(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelInfo)

	l.WithField("a", 1).WithField("a", 2).WithError(errors.New("boom")).Info("x")
	assert.Contains(t, buf.String(), "{a=2, error=boom}")
}

func TestWithFieldsIsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelInfo)

	l.WithFields(map[string]any{"z": 1, "b": 2, "m": 3}).Info("x")
	assert.Contains(t, buf.String(), "{b=2, m=3, z=1}")
}

func TestNullLogger(t *testing.T) {
	NullLogger.Error("discarded")
	assert.False(t, NullLogger.Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	lvl, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, LevelInfo, lvl)
}
