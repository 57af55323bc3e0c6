package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config describes how a logger is built. The CLI fills it from viper.
type Config struct {
	Level     string // trace, debug, info, warn, error, off
	Format    string // json, console, auto
	Output    string // stderr, stdout, discard, or a file path
	NoColor   bool
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig is info level, auto format, stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv(EnvNoColor) != "",
	}
}

// NewLoggerFromConfig builds a logger and sets zerolog's global level to
// match. A nil cfg means DefaultConfig. Callers are always at debug level
// and below.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out, terminal := openOutput(cfg.Output)
	lc := zerolog.New(formatWriter(out, cfg, terminal)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		lc = lc.Caller()
	}
	for k, v := range cfg.Fields {
		lc = addField(lc, k, v)
	}
	return lc.Logger()
}

// openOutput resolves the output name. An unopenable file falls back to
// stderr with a note so logs are not silently lost.
func openOutput(name string) (io.Writer, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stderr":
		return os.Stderr, stderrIsTerminal()
	case "stdout":
		return os.Stdout, false
	case "discard", "none":
		return io.Discard, false
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v, writing to stderr\n", err)
		return os.Stderr, stderrIsTerminal()
	}
	return f, false
}

func formatWriter(out io.Writer, cfg *Config, terminal bool) io.Writer {
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "", "auto":
		if !terminal {
			return out
		}
	default:
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func addField(c zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return c.Str(key, v)
	case int:
		return c.Int(key, v)
	case bool:
		return c.Bool(key, v)
	case time.Duration:
		return c.Dur(key, v)
	case error:
		return c.AnErr(key, v)
	case []string:
		return c.Strs(key, v)
	default:
		return c.Interface(key, v)
	}
}
