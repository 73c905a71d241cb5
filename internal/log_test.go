package internal

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"error", LogLevelError, true},
		{"WARN", LogLevelWarn, true},
		{" info ", LogLevelInfo, true},
		{"Debug", LogLevelDebug, true},
		{"", LogLevelWarn, false},
		{"trace", LogLevelWarn, false},
	}
	for _, tt := range tests {
		got, ok := ParseLogLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn, &buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 3")
	assert.Contains(t, out, "[ERROR] shown 4")

	l.SetLevel(LogLevelDebug)
	l.Debug("now %s", "visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
	assert.Equal(t, LogLevelDebug, l.GetLevel())
}

func TestComponentWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn, &buf)
	assert.Equal(t, io.Discard, l.ComponentWriter())

	l.SetLevel(LogLevelInfo)
	assert.Equal(t, &buf, l.ComponentWriter())
}

func TestNewDefaultLogger(t *testing.T) {
	t.Setenv("EDUSTAT_LOG_LEVEL", "debug")
	assert.Equal(t, LogLevelDebug, NewDefaultLogger().GetLevel())

	t.Setenv("EDUSTAT_LOG_LEVEL", "bogus")
	assert.Equal(t, LogLevelWarn, NewDefaultLogger().GetLevel())
}
