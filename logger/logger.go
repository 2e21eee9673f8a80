package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. With a path the log goes to that
// file, otherwise to stderr.
func NewLogger(path string, debug bool) (*logrus.Logger, error) {
	l := logrus.New()

	if len(path) > 0 {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("error opening logfile: %s", err)
		}
		l.SetOutput(f)
	}

	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return l, nil
}
