package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

var nodeLog bool
var serverLog bool

// InitLog enables the compute (node) and server informational logs.
// Warnings and failures are always logged.
func InitLog(node, server bool) {
	nodeLog = node
	serverLog = server
	if node || server {
		logger.SetLevel(logrus.DebugLevel)
	}
}

// SetOutput redirects every log
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// ComputeLogger returns an entry for an estimator run, or nil when compute
// logs are disabled
func ComputeLogger(role string) *logrus.Entry {
	if !nodeLog {
		return nil
	}
	return logger.WithField("role", role)
}

func ServerLog(format string, v ...any) {
	if serverLog {
		logger.WithField("role", "server").Infof(format, v...)
	}
}

func NodeLog(role string, format string, v ...any) {
	if nodeLog {
		logger.WithField("role", role).Infof(format, v...)
	}
}

func WarnLog(role string, format string, v ...any) {
	logger.WithField("role", role).Warnf(format, v...)
}

func FailOnError(format string, err error, v ...any) {
	if err != nil {
		logger.WithError(err).Fatalf(format, v...)
	}
}
