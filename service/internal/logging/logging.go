// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. format is "text" or "json".
func Setup(out io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	if out != nil {
		logrus.SetOutput(out)
	}

	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("log format %q: want text or json", format)
	}
	return nil
}

// ForMatch returns an entry tagged with the match ID.
func ForMatch(id uuid.UUID) *logrus.Entry {
	return logrus.WithField("match", id.String())
}

// ForSeat returns an entry tagged with the match, seat and player.
func ForSeat(id uuid.UUID, seat int, player uuid.UUID) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"match":  id.String(),
		"seat":   seat,
		"player": player.String(),
	})
}
