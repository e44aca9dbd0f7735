package log

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"openai2local/internal/core"
)

// LogLevel defines the severity level for log messages.
type LogLevel int

// Log level constants.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// ParseLevel converts a config level string to a LogLevel. Unknown values
// fall back to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// AppLogger is the application logger implementation.
type AppLogger struct {
	logger     *log.Logger
	minLevel   LogLevel
	fileHandle *os.File
	mu         sync.RWMutex
}

// NewAppLogger creates a logger writing to output with a minimum level.
func NewAppLogger(output io.Writer, minLevel LogLevel) *AppLogger {
	return &AppLogger{
		logger:   log.New(output, "", log.LstdFlags),
		minLevel: minLevel,
	}
}

func (l *AppLogger) logf(level LogLevel, prefix, format string, args ...any) {
	if l == nil || level < l.minLevel {
		return
	}
	l.logger.Printf(prefix+format, args...)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) {
	l.logf(DEBUG, "[DEBUG] ", format, args...)
}

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) {
	l.logf(INFO, "[INFO] ", format, args...)
}

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) {
	l.logf(WARN, "[WARN] ", format, args...)
}

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) {
	l.logf(ERROR, "[ERROR] ", format, args...)
}

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l != nil {
		l.logger.Fatalf("[FATAL] "+format, args...)
	} else {
		log.Fatalf("[FATAL] "+format, args...)
	}
}

// Close safely closes the log file handle.
func (l *AppLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

// containsPathTraversal checks if path contains path traversal characters.
func containsPathTraversal(path string) bool {
	for _, pattern := range []string{"..", "./", ".\\"} {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// createDebugFileOutput creates debug file output, falls back gracefully on failure.
func createDebugFileOutput() (io.Writer, *os.File) {
	debugFile := os.Getenv("DEBUG_FILE")
	if debugFile == "" {
		return os.Stdout, nil
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		log.Printf("[WARN] DEBUG_FILE path too long, falling back to stdout")
		return os.Stdout, nil
	}

	if containsPathTraversal(debugFile) {
		log.Printf("[WARN] DEBUG_FILE contains path traversal characters, falling back to stdout")
		return os.Stdout, nil
	}

	//nolint:gosec // G304: debugFile from env var, validated by containsPathTraversal
	file, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		log.Printf("[WARN] Failed to open DEBUG_FILE '%s': %v, falling back to stdout", debugFile, err)
		return os.Stdout, nil
	}

	return file, file
}

// CreateLogger creates a logger instance for the given config level string.
func CreateLogger(level string) core.Logger {
	output, fileHandle := createDebugFileOutput()

	logger := &AppLogger{
		logger:     log.New(output, "", log.LstdFlags),
		minLevel:   ParseLevel(level),
		fileHandle: fileHandle,
	}

	return logger
}
