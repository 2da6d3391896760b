package logger

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Global logger instance. Stdout carries the sample itself, so the
	// zero value writes to stderr.
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Pre-compiled regex patterns for sensitive data detection
	passwordPattern   = regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key|auth)`)
	credentialPattern = regexp.MustCompile(`(?i)://([^:]+):([^@]+)@`)
)

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stderr, file
	FilePath   string // path to log file if output=file
	Component  string // component name for structured logging
	EnableFile bool   // enable file output
}

// InitLogger initializes the global logger with the provided configuration
func InitLogger(cfg Config) error {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	writer, err := openWriter(cfg)
	if err != nil {
		return err
	}

	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	Logger = zerolog.New(writer).With().Timestamp().Str("component", cfg.Component).Logger()
	log.Logger = Logger

	return nil
}

// openWriter resolves the log destination. Stdout is never used.
func openWriter(cfg Config) (io.Writer, error) {
	if cfg.Output == "file" || cfg.EnableFile {
		if cfg.FilePath == "" {
			return os.Stderr, nil
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return os.Stderr, nil
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// sanitizeFields removes or redacts sensitive information from fields
func sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if passwordPattern.MatchString(key) {
			result[key] = "***REDACTED***"
			continue
		}

		if strValue, ok := value.(string); ok {
			result[key] = sanitizeString(strValue)
		} else {
			result[key] = value
		}
	}

	return result
}

// sanitizeString removes sensitive information from strings
func sanitizeString(s string) string {
	return credentialPattern.ReplaceAllString(s, "://$1:***@")
}

// Debug logs a debug message
func Debug(pkg, message string) {
	Logger.Debug().
		Str("package", pkg).
		Msg(message)
}

// Debugf logs a formatted debug message
func Debugf(pkg, format string, args ...interface{}) {
	Logger.Debug().
		Str("package", pkg).
		Msgf(format, args...)
}

// Info logs an info message
func Info(pkg, message string) {
	Logger.Info().
		Str("package", pkg).
		Msg(message)
}

// Warn logs a warning message
func Warn(pkg, message string) {
	Logger.Warn().
		Str("package", pkg).
		Msg(message)
}

// Warnf logs a formatted warning message
func Warnf(pkg, format string, args ...interface{}) {
	Logger.Warn().
		Str("package", pkg).
		Msgf(format, args...)
}

// Error logs an error message
func Error(pkg, message string, err error) {
	Logger.Error().
		Str("package", pkg).
		Err(err).
		Msg(message)
}

// SafeDebug logs a debug message with sanitized fields
func SafeDebug(pkg, message string, fields map[string]interface{}) {
	event := Logger.Debug().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// SafeWarn logs a warning message with sanitized fields
func SafeWarn(pkg, message string, fields map[string]interface{}) {
	event := Logger.Warn().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// SafeError logs an error message with sanitized fields
func SafeError(pkg, message string, err error, fields map[string]interface{}) {
	event := Logger.Error().Str("package", pkg).Err(err)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// WithFields creates a logger with predefined fields
func WithFields(pkg string, fields map[string]interface{}) zerolog.Logger {
	ctx := Logger.With().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}

// Segment logs a shared memory segment operation
func Segment(operation string, unit int, key uint32, fields map[string]interface{}) {
	event := Logger.Debug().
		Str("package", "shm").
		Str("operation", operation).
		Int("unit", unit).
		Str("key", "0x"+strconv.FormatUint(uint64(key), 16))

	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}

	event.Msg("SHM operation")
}

// Snapshot logs the outcome of a snapshot read
func Snapshot(unit, attempts int, consistent bool, duration time.Duration) {
	event := Logger.Debug()
	if !consistent {
		event = Logger.Warn()
	}

	event.
		Str("package", "shm").
		Int("unit", unit).
		Int("attempts", attempts).
		Bool("consistent", consistent).
		Dur("duration", duration).
		Msg("Snapshot read")
}

// Startup logs application startup information
func Startup(version, commit string, config interface{}) {
	Logger.Debug().
		Str("package", "main").
		Str("version", version).
		Str("commit", commit).
		Interface("config", config).
		Msg("shmtime-reader starting")
}
