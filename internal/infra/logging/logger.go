// Package logging provides file-based logging for git-qa.
// Entries are appended to <cache>/logs/git-qa.log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
)

// GlobalScope is the scope of entries not tied to a candidate.
const GlobalScope = "global"

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled entries to the log file.
// Fields are ordered to minimize memory padding.
type Logger struct {
	file     *os.File
	now      func() time.Time
	cacheDir string
	mu       sync.Mutex
	level    slog.Level
}

// New creates a new Logger that writes below cacheDir.
// If cacheDir is empty, logging is disabled.
func New(cacheDir string, level slog.Level) *Logger {
	return &Logger{
		cacheDir: cacheDir,
		level:    level,
		now:      time.Now,
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns the log file path, or "" when logging is disabled.
func (l *Logger) Path() string {
	if l.cacheDir == "" {
		return ""
	}
	return domain.LogPath(l.cacheDir)
}

// ensureFile opens or returns the log file. Callers hold l.mu.
func (l *Logger) ensureFile() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}

	path := domain.LogPath(l.cacheDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	return f, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [#123] [github] message
func formatLog(t time.Time, level slog.Level, scope, category, msg string) string {
	if scope == "" {
		scope = GlobalScope
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, scope, category, msg string) {
	if l.cacheDir == "" {
		return // Logging disabled
	}
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.ensureFile()
	if err != nil {
		return
	}
	_, _ = io.WriteString(f, formatLog(l.now(), level, scope, category, msg))
}

// Info logs an info message.
func (l *Logger) Info(scope, category, msg string) {
	l.log(slog.LevelInfo, scope, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(scope, category, msg string) {
	l.log(slog.LevelDebug, scope, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(scope, category, msg string) {
	l.log(slog.LevelWarn, scope, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(scope, category, msg string) {
	l.log(slog.LevelError, scope, category, msg)
}
