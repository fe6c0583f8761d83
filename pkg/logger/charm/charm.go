// Package charm is a logger backend on top of charmbracelet/log. The same
// backend serves the console and the rotating log file; only the writer and
// the format differ.
package charm

import (
	"fmt"
	"io"
	"os"

	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format names a record format.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// ParseFormat accepts text, json and logfmt. An empty name is text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatLogfmt:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q", name)
	}
}

func (f Format) formatter() log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Params configures a Backend.
type Params struct {
	// Writer defaults to stderr.
	Writer io.Writer
	Format Format
	Debug  bool
}

// Backend writes records through a charmbracelet/log logger.
type Backend struct {
	logger *log.Logger
	closer io.Closer
}

// New returns a backend writing to params.Writer.
func New(params Params) *Backend {
	w := params.Writer
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	b := &Backend{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Formatter:       params.Format.formatter(),
		}),
	}
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		b.closer = c
	}
	return b
}

// RotateParams configures a size rotated log file. Sizes are in megabytes,
// MaxAge in days. Zero values use the defaults.
type RotateParams struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// NewRotating returns a backend writing to a compressed, size rotated file.
func NewRotating(rotate RotateParams, format Format, debug bool) *Backend {
	return New(Params{
		Writer: &lumberjack.Logger{
			Filename:   rotate.Path,
			MaxSize:    orDefault(rotate.MaxSize, 10),
			MaxBackups: orDefault(rotate.MaxBackups, 5),
			MaxAge:     orDefault(rotate.MaxAge, 30),
			Compress:   true,
		},
		Format: format,
		Debug:  debug,
	})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Write implements logger.Backend. Fatal records are written without
// exiting; the facade exits once every backend has the record.
func (b *Backend) Write(level logger.Level, message string, keyvals ...any) {
	switch level {
	case logger.LevelDebug:
		b.logger.Log(log.DebugLevel, message, keyvals...)
	case logger.LevelInfo:
		b.logger.Log(log.InfoLevel, message, keyvals...)
	case logger.LevelWarn:
		b.logger.Log(log.WarnLevel, message, keyvals...)
	case logger.LevelError:
		b.logger.Log(log.ErrorLevel, message, keyvals...)
	case logger.LevelFatal:
		b.logger.Log(log.FatalLevel, message, keyvals...)
	default:
		b.logger.Print(message, keyvals...)
	}
}

// Close closes the underlying writer when the backend owns one.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
