package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	log   *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logger{Debug: debug, log: l}
}

func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

func msg(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.log.Debug(msg(format, args))
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Info(msg(format, args))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warn(msg(format, args))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Error(msg(format, args))
}
