// Package app provides the application context and dependency management
// for the tftmeta CLI: configuration, logging and a lazily created client.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tftmeta"
	"github.com/agentstation/tftmeta/pkg/logging"
)

// App represents the tftmeta application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client tftmeta.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Client returns the tftmeta client, creating it lazily if needed.
func (a *App) Client() (tftmeta.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := tftmeta.New(a.clientOptions()...)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Context attaches the application logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// Shutdown releases the client's connections.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c != nil {
		return c.Close()
	}
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []tftmeta.Option {
	cfg := a.config
	opts := []tftmeta.Option{
		tftmeta.WithLowercasePaths(cfg.LowercasePaths),
	}
	if cfg.CurrentSet != "" {
		opts = append(opts, tftmeta.WithCurrentSet(cfg.CurrentSet))
	}
	if cfg.Locale != "" {
		opts = append(opts, tftmeta.WithLocale(cfg.Locale))
	}
	if cfg.FallbackVersion != "" {
		opts = append(opts, tftmeta.WithFallbackVersion(cfg.FallbackVersion))
	}
	if cfg.CacheTTL > 0 {
		opts = append(opts, tftmeta.WithCacheTTL(cfg.CacheTTL))
	}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, tftmeta.WithHTTPTimeout(cfg.HTTPTimeout))
	}
	if cfg.Retries >= 0 {
		opts = append(opts, tftmeta.WithRetries(cfg.Retries))
	}
	if cfg.DDragonURL != "" {
		opts = append(opts, tftmeta.WithDDragonURL(cfg.DDragonURL))
	}
	if cfg.CDragonURL != "" {
		opts = append(opts, tftmeta.WithCDragonURL(cfg.CDragonURL))
	}
	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c tftmeta.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
