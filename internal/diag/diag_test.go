package diag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	lines []string
}

func (c *captureSink) Warnf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestWarnfAccumulatesInOrder(t *testing.T) {
	sink := &captureSink{}
	l := New(sink)

	l.Warnf("first %d", 1)
	l.Warnf("second")

	assert.Equal(t, []string{"first 1", "second"}, l.Warnings())
	require.Len(t, sink.lines, 2)
	assert.Contains(t, sink.lines[0], "first 1")
	assert.Contains(t, sink.lines[0], l.RunID[:8])
}

func TestReportFormat(t *testing.T) {
	l := New(nil)
	l.Warnf("no month in date")
	l.Warnf("bad day")

	var buf bytes.Buffer
	l.Report(&buf)
	assert.Equal(t, "  1: no month in date\n  2: bad day\n", buf.String())
}

func TestNilLogIsSafe(t *testing.T) {
	var l *Log
	l.Warnf("ignored")
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Warnings())

	var buf bytes.Buffer
	l.Report(&buf)
	assert.Empty(t, buf.String())
}

func TestCheckFileCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0644))

	l := New(nil)
	l.CheckFileCurrent(path)
	assert.Equal(t, 0, l.Len())

	old := time.Now().AddDate(0, 0, -3)
	require.NoError(t, os.Chtimes(path, old, old))
	l.CheckFileCurrent(path)
	require.Equal(t, 1, l.Len())
	assert.Contains(t, l.Warnings()[0], "not today")

	l.CheckFileCurrent(filepath.Join(dir, "missing.html"))
	assert.Equal(t, 2, l.Len())
}
