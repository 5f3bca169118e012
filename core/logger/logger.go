package logger

import "github.com/sirupsen/logrus"

var log = logrus.New()

func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

func Info(format string, args ...any) {
	log.Infof(format, args...)
}

func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

func Fatal(format string, args ...any) {
	log.Fatalf(format, args...)
}

// SetVerbose switches the level between info and debug.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}
