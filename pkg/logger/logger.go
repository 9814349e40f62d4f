package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Init configures the global logrus instance. Verbosity is a count
// (0 = info, 1 = debug, >=2 = trace). logFilePath may be empty to log to
// stderr only; stdout is reserved for script output.
func Init(verbosity int, logFilePath string) {
	logrus.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceFormatting: true,
	})

	switch {
	case verbosity <= 0:
		logrus.SetLevel(logrus.InfoLevel)
	case verbosity == 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.TraceLevel)
	}

	writers := []io.Writer{os.Stderr}
	if logFilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
		})
	}
	logrus.SetOutput(io.MultiWriter(writers...))
}

// GetLogger returns a logger entry with the given prefix.
func GetLogger(prefix string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"prefix": prefix})
}
