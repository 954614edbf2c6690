// Package logging configures the process-wide logrus loggers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"medvault/internal/config"
)

var (
	// API is used by handlers, services and repositories.
	API logrus.FieldLogger = logrus.StandardLogger()
	// Request carries one entry per HTTP request.
	Request logrus.FieldLogger = logrus.StandardLogger()
	// Worker is used by the scan queue worker and batch commands.
	Worker logrus.FieldLogger = logrus.StandardLogger()
)

// Setup builds the named loggers from cfg. It returns the root logger so the
// caller can route other output through it.
func Setup(cfg config.LogConfig, environment string) *logrus.Logger {
	return SetupWithOutput(cfg, environment, os.Stderr)
}

// SetupWithOutput is Setup with an explicit destination.
func SetupWithOutput(cfg config.LogConfig, environment string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	API = Logger(logger, "api", environment)
	Request = Logger(logger, "request", environment)
	Worker = Logger(logger, "worker", environment)
	return logger
}

// Logger tags every entry from logger with the component and environment.
func Logger(logger *logrus.Logger, component, environment string) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"component":   component,
		"environment": environment,
	})
}

// ParseLevel maps a config level name to a logrus level; unknown names give info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
