package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/asher407/hotwave/internal/model"
)

// Log is the shared logger instance. It defaults to info-level stderr output
// so library code can log before Init runs.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// Init applies the configured level and optional file tee.
func Init(cfg model.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		Log.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	return nil
}
