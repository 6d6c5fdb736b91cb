package obs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from config values.
// Level is one of trace|debug|info|warning|error|fatal; format text|json.
func NewLogger(level, format string) *logrus.Logger {
	l := logrus.New()

	switch level {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warning", "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	case "fatal":
		l.SetLevel(logrus.FatalLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	l.SetOutput(os.Stdout)
	return l
}
