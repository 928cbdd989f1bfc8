package log

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup applies the configured level and output format to the standard logger.
// Unknown levels fall back to info, any format other than "json" is rendered as text.
func Setup(level string, format string) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// WithLocale returns an entry tagged with the locale being processed.
func WithLocale(code string) *log.Entry {
	return log.WithField("locale", code)
}

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
