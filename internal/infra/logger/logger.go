// internal/infra/logger/logger.go
package logger

import (
	"io"
	"strings"

	"isitpayday/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger for the long-running service: level from LOG_LEVEL,
// JSON lines in production and staging, human-readable text elsewhere.
func Init(cfg *config.AppConfig, out io.Writer) {
	Log.SetOutput(out)
	Log.SetLevel(parseLevel(cfg.LogLevel, logrus.InfoLevel))
	Log.SetFormatter(formatterFor(cfg.Environment))

	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Debug("Logger initialized")
}

// InitCLI configures the global logger for one-shot commands. Output goes to out, which
// should not be the command's result stream, and only warnings surface unless LOG_LEVEL
// asks for debug or trace.
func InitCLI(cfg *config.AppConfig, out io.Writer) {
	Log.SetOutput(out)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level := parseLevel(cfg.LogLevel, logrus.WarnLevel)
	if level < logrus.DebugLevel {
		level = logrus.WarnLevel
	}
	Log.SetLevel(level)
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

func parseLevel(s string, fallback logrus.Level) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to '%s'.", s, fallback)
		return fallback
	}
	return level
}

func formatterFor(environment string) logrus.Formatter {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		}
	default:
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	}
}
