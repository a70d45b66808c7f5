// Package logger provides an instance-owned logrus logger. Each SDK
// instance carries its own *Logger so two instances with different debug
// settings never share output state.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls output, level and optional file rotation.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // empty means console only
	MaxSize    int    // MB per log file
	MaxBackups int    // rotated files kept
	MaxAge     int    // days rotated files kept
	Compress   bool
}

// Logger wraps a private logrus instance.
type Logger struct {
	log *logrus.Logger
}

// New builds a logger from config.
func New(config Config) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})

	writers := []io.Writer{os.Stdout}
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0o755); err != nil {
			return nil, err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	return &Logger{log: log}, nil
}

// Default returns an info-level console logger.
func Default() *Logger {
	l, _ := New(Config{Level: "info"})
	return l
}

// Debug returns a debug-level console logger.
func Debug() *Logger {
	l, _ := New(Config{Level: "debug"})
	return l
}

// Discard returns a logger that drops everything. Used when no logger is
// supplied to a component.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{log: log}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log.Errorf(format, args...) }

// WithField attaches a structured field.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.log.WithField(key, value)
}

// WithFields attaches multiple structured fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}
