package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger.
var Logger = logrus.New()

type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	File   string // optional log file, duplicated to stdout
}

func Init(o Options) {
	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if o.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	out := io.Writer(os.Stdout)
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			Logger.Warnf("log file %s: %v", o.File, err)
		} else {
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	Logger.SetOutput(out)
}
