package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance
	Log *logrus.Logger
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	FilePath   string // Path to log file; empty means stderr only
	MaxSize    int    // Max size in MB before rotation
	MaxAge     int    // Max days to keep old logs
	MaxBackups int    // Max number of old logs to keep
	Compress   bool   // Compress old logs
}

// DefaultLogConfig returns default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		MaxSize:    50,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
	}
}

// InitLogger initializes the global logger, with file rotation when a log
// file is configured.
func InitLogger(config LogConfig) error {
	Log = logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Log.SetOutput(os.Stderr)

	if config.FilePath == "" {
		return nil
	}

	logDir := filepath.Dir(config.FilePath)
	if logDir != "." && logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxAge:     config.MaxAge,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
		LocalTime:  true,
	}
	Log.SetOutput(io.MultiWriter(os.Stderr, fileWriter))

	Log.WithFields(logrus.Fields{
		"level": config.Level,
		"file":  config.FilePath,
	}).Debug("Logger initialized")

	return nil
}

// GetLogger returns the global logger instance.
// If not initialized, returns a default logger.
func GetLogger() *logrus.Logger {
	if Log == nil {
		Log = logrus.New()
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		Log.SetOutput(os.Stderr)
	}
	return Log
}
