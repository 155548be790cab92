// Package logging configures the process-wide structured logger.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a zerolog.Logger writing to stderr at the given level name
// (case-insensitive; defaults to info on an unrecognized value).
func New(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
