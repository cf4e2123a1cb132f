package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the service logger: JSON to stdout, level from config
// ("debug", "info", "warn", "error"; anything else means info).
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
