// Package logging builds the zerolog loggers used across reviewlens.
//
// Loggers are created once from a Config at command start-up and carried on
// the context; library code retrieves them with FromContext and tags its
// events with a component name via ComponentLogger. Every event logged with
// Ctx(ctx) picks up the run's trace ID.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Output and format names accepted by Config.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Rotation defaults for file output.
const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

// Config describes where and how to log.
type Config struct {
	// Level is a zerolog level name; unknown values fall back to info.
	Level string

	// Format is "json" or "console".
	Format string

	// Output is "stderr", "stdout" or "file".
	Output string

	// File is the log file path when Output is "file".
	File string

	// Caller adds file:line to each event.
	Caller bool
}

// LogPathResult is the outcome of NewLoggerWithPath.
type LogPathResult struct {
	Logger zerolog.Logger

	// UsingFile is true when events go to FilePath.
	UsingFile bool
	FilePath  string

	// FallbackUsed is true when file output was requested but stderr is used.
	FallbackUsed   bool
	FallbackReason string

	closer io.Closer
}

// Close releases the log file, if any.
func (r *LogPathResult) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// NewLogger builds a logger writing to stderr or stdout per cfg. File output
// is ignored here; use NewLoggerWithPath for it.
func NewLogger(cfg Config) zerolog.Logger {
	var out io.Writer = os.Stderr
	if cfg.Output == OutputStdout {
		out = os.Stdout
	}
	return build(cfg, out)
}

// NewLoggerWithPath builds a logger honouring file output. When the log file
// cannot be prepared the logger falls back to stderr and the result says why.
func NewLoggerWithPath(cfg Config) LogPathResult {
	if cfg.Output != OutputFile || strings.TrimSpace(cfg.File) == "" {
		return LogPathResult{Logger: NewLogger(cfg)}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return LogPathResult{
			Logger:         NewLogger(Config{Level: cfg.Level, Format: cfg.Format, Caller: cfg.Caller}),
			FallbackUsed:   true,
			FallbackReason: fmt.Sprintf("creating log directory: %v", err),
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
	}

	fileCfg := cfg
	// Console escapes are noise in a file.
	if fileCfg.Format == FormatConsole {
		fileCfg.Format = FormatJSON
	}

	return LogPathResult{
		Logger:    build(fileCfg, rotator),
		UsingFile: true,
		FilePath:  cfg.File,
		closer:    rotator,
	}
}

func build(cfg Config, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	if cfg.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).Hook(TraceHook{}).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ComponentLogger returns a child logger tagged with component=name.
func ComponentLogger(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// FromContext returns the logger stored on ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return zerolog.Ctx(ctx)
}

// PrintLogPathMessage tells the user where logs are going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user file logging was not possible.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}

// ValidateLevel reports whether level is a zerolog level name.
func ValidateLevel(level string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(level)); err != nil || level == "" {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return nil
}

// ErrInvalidLevel is returned by ValidateLevel.
var ErrInvalidLevel = errors.New("invalid log level")
