// Package runlog holds the human-readable log of a single run. Lines are
// appended in order, echoed to the process logger, and flushed to the run's
// log file and report email when the run ends.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type Log struct {
	log   *zap.SugaredLogger
	lines []string
}

func New(log *zap.SugaredLogger) *Log {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Log{log: log}
}

func (l *Log) Info(line string) {
	l.lines = append(l.lines, line)
	l.log.Info(line)
}

func (l *Log) Infof(format string, args ...any) { l.Info(fmt.Sprintf(format, args...)) }

func (l *Log) Warn(line string) {
	l.lines = append(l.lines, line)
	l.log.Warn(line)
}

func (l *Log) Error(line string) {
	l.lines = append(l.lines, line)
	l.log.Error(line)
}

func (l *Log) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }

// Lines returns a copy of the lines so far.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Log) Len() int { return len(l.lines) }

func (l *Log) String() string { return strings.Join(l.lines, "\n") }

// WriteFile writes every line, newline-joined, to path.
func (l *Log) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(l.String()), 0o644)
}
