package ui

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(false)
	l.SetOutput(&buf)

	l.Debugf("hidden %d\n", 1)
	l.Infof("loaded %d tables\n", 3)
	l.Warnf("stale file")
	l.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "loaded 3 tables")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "level=error")
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(true)
	l.SetOutput(&buf)

	l.Debugf("HTTP GET %s\n", "http://example.com")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "HTTP GET http://example.com")
}

func TestProgressHandle(t *testing.T) {
	pm := NewProgressManager(io.Discard)
	h := pm.Register("charts")
	h.SetTotal(2)
	h.Add(100)
	h.Add(50)
	h.MarkDone()
	h.Add(10)
	pm.Close()

	assert.Equal(t, int64(150), h.bytes)
	assert.Equal(t, int64(2), h.done)
}
