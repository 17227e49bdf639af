package stmlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LvlWarn)

	l.Debug("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	assert.Contains(t, out, "k=1")
}

func TestChildLoggerInheritsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New("component", "engine")
	l.SetOutput(&buf)
	child := l.New("attempt", 7)

	child.Info("committed")

	out := buf.String()
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "attempt=7")
}

func TestCritCallsExitFuncInsteadOfOSExit(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	var code int
	old := exitFunc
	defer SetExitFunc(old)
	SetExitFunc(func(c int) { code = c })

	l.Crit("boom", "reason", "duplicate entry")

	assert.Equal(t, 1, code)
	assert.True(t, strings.Contains(buf.String(), "boom"))
}

func TestHistoryRecordsRecentLines(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.Info("marker-for-history-test")

	lines := History()
	found := false
	for _, line := range lines {
		if strings.Contains(line, "marker-for-history-test") {
			found = true
		}
	}
	assert.True(t, found, "expected History() to contain the most recent record")
}
