package libvlc

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogLevel is the verbosity threshold for diagnostics emitted by this
// package. It does not affect libVLC's own logging.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelFatal
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// EnvLogLevel names the environment variable read once to pick the initial
// log threshold.
const EnvLogLevel = "LIBVLC_LOG_LEVEL"

var logLevelNames = [...]string{
	LogLevelNone:  "NONE",
	LogLevelFatal: "FATAL",
	LogLevelError: "ERROR",
	LogLevelWarn:  "WARN",
	LogLevelInfo:  "INFO",
	LogLevelDebug: "DEBUG",
	LogLevelTrace: "TRACE",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(logLevelNames) {
		return "UNKNOWN"
	}
	return logLevelNames[l]
}

// ParseLogLevel parses a level name, case-insensitively. "WARNING" is
// accepted as an alias of WARN.
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LogLevelWarn, nil
	}
	for i, n := range logLevelNames {
		if n == name {
			return LogLevel(i), nil
		}
	}
	return LogLevelNone, fmt.Errorf("unknown log level %q", s)
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogLevelFatal:
		return logrus.FatalLevel
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelInfo:
		return logrus.InfoLevel
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelTrace:
		return logrus.TraceLevel
	default:
		return logrus.PanicLevel
	}
}

var (
	loggerOnce sync.Once
	logger     *logrus.Logger
)

// Logger returns the package logger. The first call reads LIBVLC_LOG_LEVEL;
// an unset or invalid value leaves logging off.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		v := viper.New()
		_ = v.BindEnv("log_level", EnvLogLevel)
		level, err := ParseLogLevel(v.GetString("log_level"))
		if err != nil {
			level = LogLevelNone
		}
		applyLogLevel(logger, level)
	})
	return logger
}

// SetLogLevel changes the package log threshold.
func SetLogLevel(level LogLevel) {
	applyLogLevel(Logger(), level)
}

func applyLogLevel(l *logrus.Logger, level LogLevel) {
	if level == LogLevelNone {
		l.SetOutput(io.Discard)
		l.SetLevel(logrus.PanicLevel)
		return
	}
	if l.Out == io.Discard {
		l.SetOutput(os.Stderr)
	}
	l.SetLevel(level.logrusLevel())
}

func logEntry() *logrus.Entry {
	return logrus.NewEntry(Logger()).WithField("component", "libvlc")
}
