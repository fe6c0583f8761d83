// Package logger is the process wide logging facade. Records go to every
// backend passed to Init; with no backends the facade is silent.
package logger

import (
	"io"
	"os"
	"sync"
)

// Level of a record. LevelNone is an unleveled message as written by Log.
type Level int

const (
	LevelNone Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return ""
	}
}

// Backend receives every record. Backends that hold resources may also
// implement io.Closer; they are closed by Close and before Fatal exits.
type Backend interface {
	Write(level Level, message string, keyvals ...any)
}

var (
	mu       sync.RWMutex
	backends []Backend

	exit = os.Exit
)

// Init replaces the configured backends.
func Init(b ...Backend) {
	mu.Lock()
	defer mu.Unlock()
	backends = b
}

// Close closes every backend implementing io.Closer and detaches all backends.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	var first error
	for _, b := range backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	backends = nil
	return first
}

func dispatch(level Level, message string, keyvals []any) {
	mu.RLock()
	defer mu.RUnlock()
	for _, b := range backends {
		b.Write(level, message, keyvals...)
	}
}

// Log writes an unleveled message.
func Log(message string, keyvals ...any) { dispatch(LevelNone, message, keyvals) }

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) { dispatch(LevelDebug, message, keyvals) }

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) { dispatch(LevelInfo, message, keyvals) }

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) { dispatch(LevelWarn, message, keyvals) }

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) { dispatch(LevelError, message, keyvals) }

// Fatal writes a message at FATAL level to all backends, closes them and
// exits with status 1.
func Fatal(message string, keyvals ...any) {
	dispatch(LevelFatal, message, keyvals)
	_ = Close()
	exit(1)
}
