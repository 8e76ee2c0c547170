package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup builds the application logger. The TUI owns the terminal, so output
// goes to file; an empty path discards log output.
func Setup(path, level string) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	if path == "" {
		log.SetOutput(io.Discard)
		return log, nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

// ErrorSink adapts a logger to the (message, error) sink the list reports
// absorbed failures to
func ErrorSink(log logrus.FieldLogger) func(string, error) {
	return func(message string, err error) {
		log.WithError(err).Error(message)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
