package tftmeta

import (
	"time"

	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/reconcile"
	"github.com/agentstation/tftmeta/pkg/sources"
)

// Option is a function that configures a Client instance.
type Option func(*config) error

// config holds the configurable settings of a Client.
type config struct {
	currentSet      string
	locale          string
	fallbackVersion string
	cacheTTL        time.Duration
	httpTimeout     time.Duration
	retries         int
	ddragonURL      string
	cdragonURL      string
	lowercasePaths  bool
	maxLookups      int
	authorities     reconcile.Authorities

	// injected providers, nil means the HTTP clients
	versioned sources.VersionedCatalog
	latest    sources.LatestCatalog

	now func() time.Time
}

// defaults returns a config with default values.
func defaults() *config {
	return &config{
		currentSet:      constants.DefaultCurrentSet,
		locale:          constants.DefaultLocale,
		fallbackVersion: constants.DefaultFallbackVersion,
		cacheTTL:        constants.DefaultCacheTTL,
		httpTimeout:     constants.DefaultHTTPTimeout,
		retries:         constants.DefaultRetries,
		ddragonURL:      constants.DDragonURL,
		cdragonURL:      constants.CDragonURL,
		maxLookups:      constants.MaxConcurrentLookups,
		now:             time.Now,
	}
}

// callTimeout bounds one provider call so that every configured retry
// fits. It never drops below ProviderCallTimeout.
func (c *config) callTimeout() time.Duration {
	return max(constants.ProviderCallTimeout, constants.CallBudget(c.httpTimeout, c.retries))
}

// apply applies the given options to the config.
func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithCurrentSet sets the set whose newest version is resolved by default.
func WithCurrentSet(set string) Option {
	return func(c *config) error {
		if set == "" {
			return errors.NewValidationError("current_set", set, "must not be empty")
		}
		c.currentSet = set
		return nil
	}
}

// WithLocale sets the catalog locale, e.g. "en_US".
func WithLocale(locale string) Option {
	return func(c *config) error {
		if locale == "" {
			return errors.NewValidationError("locale", locale, "must not be empty")
		}
		c.locale = locale
		return nil
	}
}

// WithFallbackVersion sets the last-known-good version used when the
// version index is unreachable.
func WithFallbackVersion(version string) Option {
	return func(c *config) error {
		if version == "" {
			return errors.NewValidationError("fallback_version", version, "must not be empty")
		}
		c.fallbackVersion = version
		return nil
	}
}

// WithCacheTTL configures how long a built snapshot is served.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl <= 0 {
			return errors.NewValidationError("cache_ttl", ttl, "must be positive")
		}
		c.cacheTTL = ttl
		return nil
	}
}

// WithHTTPTimeout configures the timeout of a single provider HTTP attempt.
// The per-call bound grows to fit it with every retry.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("http_timeout", d, "must be positive")
		}
		c.httpTimeout = d
		return nil
	}
}

// WithRetries configures the provider HTTP retry count.
func WithRetries(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewValidationError("retries", n, "must not be negative")
		}
		c.retries = n
		return nil
	}
}

// WithDDragonURL overrides the Data Dragon base URL for data and images.
func WithDDragonURL(u string) Option {
	return func(c *config) error {
		c.ddragonURL = u
		return nil
	}
}

// WithCDragonURL overrides the Community Dragon base URL for data and images.
func WithCDragonURL(u string) Option {
	return func(c *config) error {
		c.cdragonURL = u
		return nil
	}
}

// WithLowercasePaths lowercases Community Dragon image paths, which is
// how the public CDN serves them.
func WithLowercasePaths(enabled bool) Option {
	return func(c *config) error {
		c.lowercasePaths = enabled
		return nil
	}
}

// WithMaxConcurrentLookups bounds concurrent fallback searches.
func WithMaxConcurrentLookups(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("max_concurrent_lookups", n, "must be at least 1")
		}
		c.maxLookups = n
		return nil
	}
}

// WithAuthorities replaces the field precedence table.
func WithAuthorities(a reconcile.Authorities) Option {
	return func(c *config) error {
		if a == nil {
			return errors.NewValidationError("authorities", nil, "must not be nil")
		}
		c.authorities = a
		return nil
	}
}

// WithProviders replaces the HTTP providers, typically with fakes in tests.
// If b also implements sources.IDLister its roster drives fallback search.
func WithProviders(a sources.VersionedCatalog, b sources.LatestCatalog) Option {
	return func(c *config) error {
		if a == nil || b == nil {
			return errors.NewValidationError("providers", nil, "both catalogs are required")
		}
		c.versioned = a
		c.latest = b
		return nil
	}
}

// WithClock overrides the clock used for cache expiry and BuiltAt.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		c.now = now
		return nil
	}
}
