// Package constants provides shared constants used throughout the tftmeta codebase.
// This includes timeouts, cache lifetimes, provider endpoints, and the
// defaults the pipeline falls back to when configuration is silent.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the transport-level timeout for a single HTTP attempt
	DefaultHTTPTimeout = 5 * time.Second

	// ProviderCallTimeout bounds one provider call, retries included. It must
	// cover CallBudget(DefaultHTTPTimeout, DefaultRetries).
	ProviderCallTimeout = 20 * time.Second

	// ResolveTimeout bounds a Resolve call whose context carries no deadline
	ResolveTimeout = 2 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 500 * time.Millisecond

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 2 * time.Second
)

// CallBudget is the worst-case duration of one provider request that makes
// retries+1 attempts of timeout each, with the longest backoff between them.
func CallBudget(timeout time.Duration, retries int) time.Duration {
	return time.Duration(retries+1)*timeout + time.Duration(retries)*MaxRetryBackoff
}

// Limit constants define various limits and capacities
const (
	// DefaultRetries is the number of transport retries per provider request
	DefaultRetries = 2

	// MaxConcurrentLookups bounds concurrent fallback searches within a kind
	MaxConcurrentLookups = 8
)

// Cache constants
const (
	// DefaultCacheTTL is how long a reconciled snapshot is served before rebuilding
	DefaultCacheTTL = 12 * time.Hour
)

// Default values
const (
	// DefaultFallbackVersion is the last-known-good catalog version used
	// when the version index cannot be fetched
	DefaultFallbackVersion = "15.12.1"

	// DefaultCurrentSet is the set epoch used for version prefix matching
	DefaultCurrentSet = "15"

	// DefaultLocale is the Data Dragon locale
	DefaultLocale = "en_US"

	// DefaultAssetSource selects whose icons win the merge
	DefaultAssetSource = "A"

	// LatestKey is the cache key segment used when no version was requested
	LatestKey = "latest"

	// TileSuffix is inserted before the extension to derive a tile icon
	TileSuffix = "_tile"
)

// Provider endpoints
const (
	// DDragonURL is the Data Dragon base URL
	DDragonURL = "https://ddragon.leagueoflegends.com"

	// CDragonURL is the Community Dragon base URL
	CDragonURL = "https://raw.communitydragon.org"
)
