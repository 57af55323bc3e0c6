// Package tftmeta aggregates Teamfight Tactics catalog data (units, items,
// traits and augments) from Data Dragon and Community Dragon into a single
// reconciled snapshot.
//
// A Client resolves the version to query, fetches both providers, merges
// them field by field, recovers roster entries missing from the current
// release by walking older Data Dragon versions, canonicalizes every icon
// to an absolute URL and derives trait breakpoints. Built snapshots are
// cached per asset source and version; when a rebuild fails the last
// snapshot is served stale instead.
//
// Example usage:
//
//	client, err := tftmeta.New(tftmeta.WithCurrentSet("14"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	snap, err := client.Resolve(ctx, tftmeta.ResolveOptions{AssetSource: "B"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, unit := range snap.Units {
//	    fmt.Printf("%s %s\n", unit.DisplayName, unit.Icon)
//	}
//
//	style := client.ActiveTraitStyle("TFT14_Arcana", 4, snap)
//	fmt.Println(style.Style)
package tftmeta

import (
	"context"
	"io"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/tftmeta/internal/cache"
	"github.com/agentstation/tftmeta/internal/sources/cdragon"
	"github.com/agentstation/tftmeta/internal/sources/ddragon"
	"github.com/agentstation/tftmeta/pkg/assets"
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/reconcile"
	"github.com/agentstation/tftmeta/pkg/thresholds"
	"github.com/agentstation/tftmeta/pkg/versions"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Resolver builds or serves snapshots.
type Resolver interface {
	// Resolve returns the snapshot for opts, building it on a cache miss.
	Resolve(ctx context.Context, opts ResolveOptions) (*catalogs.Snapshot, error)

	// Invalidate drops the cached snapshot for opts.
	Invalidate(opts ResolveOptions) error
}

// TraitStyler evaluates trait breakpoints against a snapshot.
type TraitStyler interface {
	ActiveTraitStyle(traitAPIName string, unitCount int, snap *catalogs.Snapshot) thresholds.Activation
}

// Client is the entry point for route handlers and schedulers.
type Client interface {
	Resolver
	TraitStyler

	// Hooks provides access to snapshot event registration
	Hooks

	// CacheStats reports snapshot cache counters.
	CacheStats() CacheStats

	// Versions returns the resolved version and the newest-first list.
	Versions(ctx context.Context) (versions.Resolution, error)

	// Close releases provider connections.
	Close() error
}

// CacheStats are the snapshot cache counters.
type CacheStats = cache.Stats

// client is the internal implementation of the Client interface.
type client struct {
	cfg        *config
	cache      *cache.Cache
	resolver   *versions.Resolver
	reconciler *reconcile.Reconciler
	closers    []io.Closer
	hooks      *hooks
}

// New creates a Client. Without WithProviders it talks to the public
// Data Dragon and Community Dragon endpoints.
func New(opts ...Option) (Client, error) {
	cfg := defaults()
	if err := cfg.apply(opts...); err != nil {
		return nil, err
	}

	c := &client{
		cfg:   cfg,
		cache: cache.New(cache.WithClock(cfg.now)),
		hooks: newHooks(),
	}

	a, b := cfg.versioned, cfg.latest
	if a == nil {
		dd := ddragon.New(
			ddragon.WithBaseURL(cfg.ddragonURL),
			ddragon.WithLocale(cfg.locale),
			ddragon.WithTimeout(cfg.httpTimeout),
			ddragon.WithRetries(cfg.retries),
		)
		cd := cdragon.New(
			cdragon.WithBaseURL(cfg.cdragonURL),
			cdragon.WithLocale(cfg.locale),
			cdragon.WithSet(cfg.currentSet),
			cdragon.WithTimeout(cfg.httpTimeout),
			cdragon.WithRetries(cfg.retries),
		)
		a, b = dd, cd
		c.closers = append(c.closers, dd, cd)
	}

	c.resolver = versions.NewResolver(a, cfg.currentSet, cfg.fallbackVersion)

	ropts := []reconcile.Option{
		reconcile.WithMaxConcurrentLookups(cfg.maxLookups),
		reconcile.WithCallTimeout(cfg.callTimeout()),
		reconcile.WithClock(func() utc.Time { return utc.New(cfg.now()) }),
		reconcile.WithAssetOptions(
			assets.WithDDragonBase(cfg.ddragonURL),
			assets.WithCDragonBase(cfg.cdragonURL),
			assets.WithLowercasePaths(cfg.lowercasePaths),
		),
	}
	if cfg.authorities != nil {
		ropts = append(ropts, reconcile.WithAuthorities(cfg.authorities))
	}
	r, err := reconcile.New(a, b, ropts...)
	if err != nil {
		return nil, err
	}
	c.reconciler = r
	return c, nil
}

// CacheStats reports snapshot cache counters.
func (c *client) CacheStats() CacheStats {
	return c.cache.Stats()
}

// Versions resolves the default version without building a snapshot.
func (c *client) Versions(ctx context.Context) (versions.Resolution, error) {
	return c.resolver.Resolve(ctx, "")
}

// Close releases provider connections.
func (c *client) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ttl is the configured snapshot lifetime.
func (c *client) ttl() time.Duration {
	return c.cfg.cacheTTL
}
