// Package logging provides structured logging for marcmerge using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// The default logger starts at info level. Programs opt into the LOG_*
// environment variables with ConfigureFromEnv:
//
//	logging.ConfigureFromEnv()
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	ctx = logging.WithTag(ctx, "245")
//	logging.FromContext(ctx).Debug().Msg("Dispatching field")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(DefaultConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default global logger, including zerolog's own
// global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
