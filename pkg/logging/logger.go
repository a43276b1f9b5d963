// Package logging provides the severity-filtered structured logger used
// across the engine, with pluggable output sinks and context-carried
// state ids.
package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Output is a log sink. Write receives every entry that passes the
// severity filter; Sync and Close follow the usual file semantics.
type Output interface {
	Write(LogEntry) error
	Sync() error
	Close() error
}

// Config configures a Logger.
type Config struct {
	Severity      Severity
	Outputs       []Output
	DefaultFields map[string]interface{}
}

// Logger filters by severity and fans entries out to its outputs.
type Logger struct {
	mu       sync.Mutex
	severity Severity
	outputs  []Output
	fields   map[string]interface{}
}

func NewLogger(cfg Config) *Logger {
	return &Logger{
		severity: cfg.Severity,
		outputs:  cfg.Outputs,
		fields:   cfg.DefaultFields,
	}
}

// StateProcessed records one completed state transform with its
// resulting coherence and latency, at DEBUG severity.
func (l *Logger) StateProcessed(ctx context.Context, stateID string, coherence float64, latency time.Duration) {
	if DEBUG < l.severity {
		return
	}

	entry := LogEntry{
		Time:      time.Now().UnixNano(),
		Severity:  DEBUG,
		Message:   "state processed",
		StateID:   stateID,
		Coherence: coherence,
		Latency:   latency.Milliseconds(),
		Fields:    make(map[string]interface{}, len(l.fields)),
	}
	if pc, file, line, ok := runtime.Caller(1); ok {
		entry.File = filepath.Base(file)
		entry.Line = line
		entry.Function = filepath.Base(runtime.FuncForPC(pc).Name())
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	l.write(entry)
}

func (l *Logger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, DEBUG, format, args...)
}

func (l *Logger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, INFO, format, args...)
}

func (l *Logger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, WARN, format, args...)
}

func (l *Logger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, ERROR, format, args...)
}

func (l *Logger) logf(ctx context.Context, s Severity, format string, args ...interface{}) {
	if s < l.severity {
		return
	}

	entry := LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: s,
		Message:  fmt.Sprintf(format, args...),
		Fields:   make(map[string]interface{}, len(l.fields)),
	}

	// Caller site, skipping logf and the severity wrapper.
	if pc, file, line, ok := runtime.Caller(2); ok {
		entry.File = filepath.Base(file)
		entry.Line = line
		entry.Function = filepath.Base(runtime.FuncForPC(pc).Name())
	}

	if ctx != nil {
		if stateID, ok := GetStateID(ctx); ok {
			entry.StateID = stateID
		}
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}

	l.write(entry)
}

func (l *Logger) write(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, out := range l.outputs {
		if err := out.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		}
	}
}

var (
	globalMu      sync.RWMutex
	defaultLogger *Logger
)

// GetLogger returns the process-wide logger, creating a console-backed
// INFO logger on first use.
func GetLogger() *Logger {
	globalMu.RLock()
	l := defaultLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(Config{
			Severity: INFO,
			Outputs:  []Output{NewConsoleOutput(false)},
		})
	}
	return defaultLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *Logger) {
	globalMu.Lock()
	defaultLogger = l
	globalMu.Unlock()
}
