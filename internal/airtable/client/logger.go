// Package client provides HTTP client functionality for the Airtable API
package client

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Logger defines the minimal logging interface used by the client.
// Implementations should be safe for concurrent use.
type Logger interface {
	// Debug logs debug-level messages with structured fields
	Debug(ctx context.Context, msg string, fields map[string]interface{})

	// Info logs info-level messages with structured fields
	Info(ctx context.Context, msg string, fields map[string]interface{})

	// Warn logs warning-level messages with structured fields
	Warn(ctx context.Context, msg string, fields map[string]interface{})

	// Error logs error-level messages with structured fields
	Error(ctx context.Context, msg string, fields map[string]interface{})
}

// noopLogger provides a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (n *noopLogger) Info(_ context.Context, _ string, _ map[string]interface{})  {}
func (n *noopLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}
func (n *noopLogger) Error(_ context.Context, _ string, _ map[string]interface{}) {}

// NewNoopLogger returns a logger that discards all messages
func NewNoopLogger() Logger {
	return &noopLogger{}
}

// writerLogger writes one line per message to an io.Writer. Used by the CLI;
// field keys are emitted in sorted order so output is stable.
type writerLogger struct {
	w     io.Writer
	debug bool
}

// NewWriterLogger returns a logger that writes formatted lines to w.
// Debug messages are dropped unless debug is true.
func NewWriterLogger(w io.Writer, debug bool) Logger {
	return &writerLogger{w: w, debug: debug}
}

func (l *writerLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.debug {
		l.write("DEBUG", msg, fields)
	}
}

func (l *writerLogger) Info(_ context.Context, msg string, fields map[string]interface{}) {
	l.write("INFO", msg, fields)
}

func (l *writerLogger) Warn(_ context.Context, msg string, fields map[string]interface{}) {
	l.write("WARN", msg, fields)
}

func (l *writerLogger) Error(_ context.Context, msg string, fields map[string]interface{}) {
	l.write("ERROR", msg, fields)
}

func (l *writerLogger) write(level, msg string, fields map[string]interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	fmt.Fprintln(l.w, b.String())
}
