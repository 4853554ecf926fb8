/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging setup for stlstream. Builds a logrus logger with JSON, text or
custom output, optionally teeing into a timestamped file under a log directory and
pruning old files. Provides parse and conversion logging helpers for the CLI and server.
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

const filePrefix = "stlstream_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level" yaml:"level"`
	Format    LogFormat `json:"format" yaml:"format"`
	OutputDir string    `json:"output_dir" yaml:"output_dir"` // empty disables file output
	MaxFiles  int       `json:"max_files" yaml:"max_files"`
	Timestamp bool      `json:"timestamp" yaml:"timestamp"`
	Caller    bool      `json:"caller" yaml:"caller"`
	Colors    bool      `json:"colors" yaml:"colors"`

	// Console receives log output alongside the file. Defaults to os.Stderr.
	Console io.Writer `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		MaxFiles:  10,
		Timestamp: true,
	}
}

// Validate checks the LoggerConfig for invalid values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger owns a configured logrus logger and its log file
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

func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
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
	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			DisableTimestamp: !l.config.Timestamp,
			CallerPrettyfier: callerPrettyfier,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			DisableTimestamp: !l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: callerPrettyfier,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}
	return nil
}

// setupFileOutput tees the log into a timestamped file when OutputDir is set
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(l.config.OutputDir, filePrefix+timestamp+".log")

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
	}).Debug("stlstream logging initialized")

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

	modTimes := make(map[string]time.Time, len(files))
	for _, f := range files {
		if stat, err := os.Stat(f); err == nil {
			modTimes[f] = stat.ModTime()
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if modTimes[files[i]].Equal(modTimes[files[j]]) {
			return files[i] < files[j]
		}
		return modTimes[files[i]].Before(modTimes[files[j]])
	})

	for _, f := range files[:len(files)-l.config.MaxFiles] {
		if f == l.filePath {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// LogParse logs the outcome of one parsed source
func (l *Logger) LogParse(source, format string, facets uint64, duration time.Duration, err error) {
	entry := l.logger.WithFields(logrus.Fields{
		"source":   source,
		"format":   format,
		"facets":   facets,
		"duration": duration,
	})
	if err != nil {
		entry.WithError(err).Error("Parse failed")
		return
	}
	entry.Info("Parse completed")
}

// LogConversion logs a finished format conversion
func (l *Logger) LogConversion(input, output, target string, facets uint64, duration time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"input":    input,
		"output":   output,
		"target":   target,
		"facets":   facets,
		"duration": duration,
	}).Info("Conversion completed")
}

// FilePath returns the active log file, or "" when file output is off
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file and prunes old ones
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.logger.SetOutput(io.Discard)
		if err := l.fileHandle.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
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
