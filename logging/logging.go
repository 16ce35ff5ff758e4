package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Log is the base log entry shared by every package in the service.
var Log = logrus.WithFields(logrus.Fields{
	"service": "notification-dispatch",
})

// SetupLogging configures the output format and level of the shared logger.
func SetupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level `%s`", level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(lvl)
	return nil
}
