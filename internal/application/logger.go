package application

import (
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// StructuredLogger provides structured JSON logging with context.
// It writes to stderr in production; stdout belongs to the stdio transport.
type StructuredLogger struct {
	logger *log.Logger
}

// NewStructuredLogger creates a JSON logger writing to w at the given level
// ("debug", "info", "warn", "error"; empty means info).
func NewStructuredLogger(w io.Writer, level string) *StructuredLogger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Formatter:       log.JSONFormatter,
		Prefix:          "taskbridge",
	})
	if lvl, err := log.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		logger.SetLevel(lvl)
	}
	return &StructuredLogger{logger: logger}
}

// NewDiscardLogger returns a logger that drops every entry.
func NewDiscardLogger() *StructuredLogger {
	return &StructuredLogger{logger: log.New(io.Discard)}
}

// Base returns the underlying logger for components outside this package.
func (l *StructuredLogger) Base() *log.Logger {
	return l.logger
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	l.logger.Info(message, keyvals(context)...)
}

// LogDebug logs a debug message with context.
func (l *StructuredLogger) LogDebug(message string, context map[string]interface{}) {
	l.logger.Debug(message, keyvals(context)...)
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	kv := keyvals(context)
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	l.logger.Error(message, kv...)
}

// keyvals flattens context into sorted key/value pairs.
func keyvals(context map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, context[k])
	}
	return kv
}
