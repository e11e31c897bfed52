package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with component helpers. Scheduler events
// carry (store, item, stage) fields so a degraded scan is diagnosable
// without string-matching output.
type Logger struct {
	logger zerolog.Logger
}

var (
	// Default is the process-wide logger instance
	Default *Logger
)

// Init configures the default logger from the environment
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	log := zerolog.New(output).With().Timestamp().Logger()
	Default = &Logger{logger: log}

	Default.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("GROCERY_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal returns a fatal event
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// ForStore creates a logger bound to one store sweep
func ForStore(storeKey string) *Logger {
	return defaultLogger().WithField("store", storeKey)
}

// ForScheduler creates a logger for the scheduler
func ForScheduler() *Logger {
	return defaultLogger().WithField("component", "scheduler")
}

// ForWorker creates a logger for the scan worker
func ForWorker() *Logger {
	return defaultLogger().WithField("component", "worker")
}

// ForStorage creates a logger for the storage collaborator
func ForStorage() *Logger {
	return defaultLogger().WithField("component", "storage")
}

func defaultLogger() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// Info logs a formatted info message on the default logger
func Info(format string, v ...interface{}) {
	defaultLogger().Info().Msgf(format, v...)
}

// Warn logs a formatted warning on the default logger
func Warn(format string, v ...interface{}) {
	defaultLogger().Warn().Msgf(format, v...)
}

// Error logs a formatted error message on the default logger
func Error(format string, v ...interface{}) {
	defaultLogger().Error().Msgf(format, v...)
}
