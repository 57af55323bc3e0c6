// Package logging provides structured logging for tftmeta using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// The package-level logger reads TFTMETA_LOG_LEVEL, TFTMETA_LOG_FORMAT and
// NO_COLOR at start-up; the CLI replaces it once flags are parsed.
//
//	log := logging.Default()
//	log.Info().Str("kind", "unit").Int("records", 60).Msg("Merged catalog")
//
//	ctx = logging.WithVersion(ctx, "14.2.1")
//	logging.FromContext(ctx).Warn().Str("id", "TFT14_Ahri").Msg("Asset dropped")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables consulted for the package-level logger.
const (
	EnvLogLevel  = "TFTMETA_LOG_LEVEL"
	EnvLogFormat = "TFTMETA_LOG_FORMAT"
	EnvNoColor   = "NO_COLOR"
)

var (
	defaultLogger = NewLoggerFromConfig(envConfig())

	// Nop discards everything.
	Nop = zerolog.Nop()
)

// Default returns the package-level logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the package-level logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the package-level logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the package-level logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warn event on the package-level logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts an error event on the package-level logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

func envConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Format = v
	}
	return cfg
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
