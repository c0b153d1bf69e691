// Package diag collects data-quality warnings raised while a table is
// being cleaned. Warnings never stop processing; they are reported once
// the run is finished.
package diag

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Sink receives every warning as it is recorded.
type Sink interface {
	Warnf(format string, args ...any)
}

// Log is an ordered list of warnings for a single run.
type Log struct {
	RunID    string
	warnings []string
	sink     Sink
}

func New(sink Sink) *Log {
	return &Log{
		RunID: uuid.NewString(),
		sink:  sink,
	}
}

func (l *Log) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.warnings = append(l.warnings, msg)
	if l.sink != nil {
		l.sink.Warnf("[%s] %s\n", l.RunID[:8], msg)
	}
}

func (l *Log) Warnings() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.warnings...)
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.warnings)
}

// Report prints every warning, numbered from 1.
func (l *Log) Report(w io.Writer) {
	if l.Len() == 0 {
		return
	}
	for i, msg := range l.warnings {
		_, _ = fmt.Fprintf(w, "%3d: %s\n", i+1, msg)
	}
}

// CheckFileCurrent warns when path was not modified today.
func (l *Log) CheckFileCurrent(path string) {
	info, err := os.Stat(path)
	if err != nil {
		l.Warnf("cannot stat %s: %v", path, err)
		return
	}

	mod := info.ModTime().Local()
	now := time.Now().Local()
	if mod.Year() != now.Year() || mod.YearDay() != now.YearDay() {
		l.Warnf("file %s was last modified %s, not today", path, mod.Format("2006-01-02"))
	}
}
