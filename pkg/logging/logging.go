// Package logging builds the logrus logger used for diagnostics. Output
// never goes to stdout, which carries the plugin result.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

// LogConfig selects the level and destination.
type LogConfig struct {
	Verbose bool
	// File, when set, sends diagnostics to a rotating log file instead of
	// stderr.
	File string
	// Writer overrides stderr. Ignored when File is set.
	Writer io.Writer
}

// New creates a logger at warn level, or debug when verbose.
func New(cfg LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})

	logger.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	out := cfg.Writer
	if out == nil {
		out = os.Stderr
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
		}
	}
	logger.SetOutput(out)
	return logger, nil
}

// Close releases a rotating log file, if the logger writes to one.
func Close(logger *logrus.Logger) error {
	if c, ok := logger.Out.(io.Closer); ok && c != os.Stderr && c != os.Stdout {
		return c.Close()
	}
	return nil
}
