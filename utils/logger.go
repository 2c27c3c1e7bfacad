package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InitLogger()
}

func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// Info ke stdout, error ke stderr
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	InfoLogger.SetLevel(logrus.InfoLevel)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

// SetLevel adjusts the info logger, e.g. "debug" in development.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		ErrorLogger.Errorf("unknown log level %q, keeping %s", level, InfoLogger.GetLevel())
		return
	}
	InfoLogger.SetLevel(lvl)
}

// Silence discards all output; used by tests.
func Silence() {
	InfoLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}

// Component returns an info entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return InfoLogger.WithField("component", name)
}
