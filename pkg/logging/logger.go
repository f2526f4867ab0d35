/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for isadetect. Wraps logrus with level and format selection,
an optional timestamped log file with retention, and detector-specific helpers.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

const filePrefix = "isadetect_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // empty: no log file
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`

	// Console receives log output besides the optional file. Defaults to stderr.
	Console io.Writer `json:"-"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelWarning,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
		// ok
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		// ok
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger wraps a logrus logger configured for the detector
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}

	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.WarnLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	console := l.config.Console
	if console == nil {
		console = os.Stderr
	}
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&DetectorFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput adds a timestamped log file next to the console output
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Nanoseconds keep names unique when several runs start within one second.
	timestamp := time.Now().Format("2006-01-02_15-04-05.000000000")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("Logging initialized")

	return nil
}

// cleanup removes the oldest log files beyond MaxFiles
func (l *Logger) cleanup() error {
	if l.config.OutputDir == "" {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, filePrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(files) <= l.config.MaxFiles {
		return nil
	}

	// File names embed the start time, so lexical order is age order.
	sort.Strings(files)
	for _, f := range files[:len(files)-l.config.MaxFiles] {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// FilePath returns the path of the current log file, if any.
func (l *Logger) FilePath() string { return l.filePath }

// Close closes the log file and enforces retention
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.logger.SetOutput(io.Discard)
		l.fileHandle.Close()
		l.fileHandle = nil
	}

	if err := l.cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}

// Detector-specific logging methods

// LogCorpusLoaded logs the size of a freshly loaded corpus
func (l *Logger) LogCorpusLoaded(dir string, architectures int, duration time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"corpus_dir":    dir,
		"architectures": architectures,
		"duration":      duration,
	}).Info("Corpus loaded")
}

// LogScan logs the outcome of scanning one file
func (l *Logger) LogScan(file string, size int, detections int, duration time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"file":       file,
		"bytes":      size,
		"detections": detections,
		"duration":   duration,
	}).Info("Scan finished")
}

// LogFileError logs a file that could not be processed
func (l *Logger) LogFileError(file string, err error) {
	l.Error("Could not process file", map[string]interface{}{
		"file":  file,
		"error": err.Error(),
	})
}
