package tftmeta

import (
	"context"
	"strings"

	"github.com/agentstation/tftmeta/internal/cache"
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
	"github.com/agentstation/tftmeta/pkg/reconcile"
)

// ResolveOptions selects a snapshot.
type ResolveOptions struct {
	// AssetSource picks the icon provider: "A" (Data Dragon) or "B"
	// (Community Dragon). Empty means "A".
	AssetSource string

	// Version pins a Data Dragon version. Empty resolves the newest
	// version of the current set.
	Version string
}

// Key returns the cache key for the options, validating the asset source.
func (o ResolveOptions) Key() (string, error) {
	source := o.source()
	if _, err := catalogs.ProviderForAssetSource(source); err != nil {
		return "", err
	}
	return cache.Key(source, strings.TrimSpace(o.Version)), nil
}

func (o ResolveOptions) source() string {
	source := strings.ToUpper(strings.TrimSpace(o.AssetSource))
	if source == "" {
		return constants.DefaultAssetSource
	}
	return source
}

// Resolve returns a complete snapshot. A fresh cached snapshot is returned
// as is; otherwise the pipeline runs and its result replaces the cache
// slot. When the pipeline fails the previous snapshot, however old, is
// served instead, and only with nothing cached does Resolve return a
// DataUnavailableError. Returned snapshots are shared and must not be
// modified.
func (c *client) Resolve(ctx context.Context, opts ResolveOptions) (*catalogs.Snapshot, error) {
	key, err := opts.Key()
	if err != nil {
		return nil, err
	}
	ctx = logging.WithCacheKey(ctx, key)
	log := logging.FromContext(ctx)

	if snap, ok := c.cache.Get(key); ok {
		log.Debug().Str("version", snap.Version).Msg("Snapshot cache hit")
		return snap, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, constants.ResolveTimeout)
		defer cancel()
	}

	res := c.resolver.ResolveOrFallback(ctx, opts.Version)
	snap, err := c.reconciler.Build(ctx, reconcile.Request{
		Resolution:  res,
		CurrentSet:  c.cfg.currentSet,
		AssetSource: opts.source(),
	})
	if err != nil {
		if stale, ok := c.cache.GetStale(key); ok {
			log.Warn().Err(err).
				Str("version", stale.Version).
				Msg("Pipeline failed, serving stale snapshot")
			c.hooks.triggerStale(key, stale, err)
			return stale, nil
		}
		log.Error().Err(err).Msg("Pipeline failed with nothing cached")
		return nil, errors.NewDataUnavailableError(key, err)
	}

	previous, _ := c.cache.Peek(key)
	c.cache.Set(key, snap, c.ttl())
	log.Info().
		Str("version", snap.Version).
		Bool("version_fallback", snap.VersionFallback).
		Dur("ttl", c.ttl()).
		Msg("Snapshot cached")

	c.hooks.triggerSnapshotBuilt(key, previous, snap)
	return snap, nil
}

// Invalidate drops the cached snapshot for opts so the next Resolve
// rebuilds it.
func (c *client) Invalidate(opts ResolveOptions) error {
	key, err := opts.Key()
	if err != nil {
		return err
	}
	c.cache.Delete(key)
	return nil
}
