package esme

import (
	"github.com/sirupsen/logrus"
)

var _logger *logrus.Logger

// SetLogger installs the logger used by the whole package. Logging is
// disabled until a logger is set.
func SetLogger(logger *logrus.Logger) {
	_logger = logger
}

func logDebug(s string, a ...any) {
	if _logger == nil {
		return
	}
	_logger.Debugf(s, a...)
}

func logInfo(s string, a ...any) {
	if _logger == nil {
		return
	}
	_logger.Infof(s, a...)
}

func logWarn(s string, a ...any) {
	if _logger == nil {
		return
	}
	_logger.Warnf(s, a...)
}

func logError(s string, a ...any) {
	if _logger == nil {
		return
	}
	_logger.Errorf(s, a...)
}
