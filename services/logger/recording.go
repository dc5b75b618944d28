package logsvc

import (
	"fmt"
	"sync"

	"github.com/trezcool/masomo-admin/core"
)

// Entry is one event recorded by a RecordingLogger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// RecordingLogger keeps every event in memory instead of shipping it anywhere.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

// Entries returns the recorded events of `level` (all of them when level is empty).
func (l *RecordingLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *RecordingLogger) Debug(msg string, args ...interface{}) { l.record("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...interface{})  { l.record("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...interface{})  { l.record("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...interface{}) { l.record("ERROR", msg, args) }

func (l *RecordingLogger) Fatal(msg string, args ...interface{}) {
	l.record("FATAL", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}
