package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Sugar is the global sugared logger instance
	Sugar *zap.SugaredLogger
)

// Config stores logger configuration
type Config struct {
	// LogToFile determines if logs should also be written to a file
	LogToFile bool
	// LogFilePath is the path where log files will be written
	LogFilePath string
	// LogLevel sets the minimum log level
	LogLevel string
}

// Initialize sets up the zap logger
func Initialize(config ...Config) {
	// Default configuration
	logConfig := Config{
		LogToFile:   false,
		LogFilePath: "logs/dbupgrade.log",
		LogLevel:    "info",
	}

	// Apply provided configuration if any
	if len(config) > 0 {
		logConfig = config[0]
	}

	Sugar = New(logConfig).Sugar()
}

// New builds a zap logger from config without touching the global instance
func New(logConfig Config) *zap.Logger {
	// Create encoder configuration
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := ParseLevel(logConfig.LogLevel)

	// Create writers
	var cores []zapcore.Core

	// Always log to stdout
	cores = append(cores, zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	))

	// Optionally log to file
	if logConfig.LogToFile && logConfig.LogFilePath != "" {
		// Ensure directory exists
		logDir := filepath.Dir(logConfig.LogFilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			logFile, err := os.OpenFile(logConfig.LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err == nil {
				cores = append(cores, zapcore.NewCore(
					zapcore.NewJSONEncoder(encoderConfig),
					zapcore.AddSync(logFile),
					level,
				))
			}
		}
	}

	// Create multi-core
	core := zapcore.NewTee(cores...)

	// Create logger with call site information and stacktraces for errors
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel maps a config level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// For returns a logger tagged with the database pair and the component emitting the messages.
// It falls back to a no-op logger when Initialize has not been called.
func For(db, dc, component string) *zap.SugaredLogger {
	base := Sugar
	if base == nil {
		base = zap.NewNop().Sugar()
	}
	return base.With("db", db, "dc", dc, "component", component)
}

// Sync flushes any buffered log entries
func Sync() {
	if Sugar != nil {
		_ = Sugar.Sync()
	}
}
