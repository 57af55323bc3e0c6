package reconcile

import (
	"context"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
)

// Lookup fetches one asset at one version.
type Lookup func(ctx context.Context, version string) (*catalogs.Record, error)

// Search walks versions in order, issuing one lookup per version, and
// stops at the first hit. The returned record is stamped with the version
// it was found at. Lookups that fail for any reason count as a miss.
// The walk never exceeds len(versions) lookups; when it is exhausted an
// AssetNotFoundError is returned. Only context cancellation ends it early.
func Search(ctx context.Context, kind catalogs.Kind, id string, versions []string, lookup Lookup) (*catalogs.Record, error) {
	log := logging.FromContext(ctx)

	for i, version := range versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := lookup(ctx, version)
		if err == nil && rec != nil {
			found := rec.Clone()
			found.FoundAtVersion = version
			log.Info().
				Str("kind", kind.String()).
				Str("id", id).
				Str("found_at", version).
				Int("lookups", i+1).
				Msg("Recovered asset from older version")
			return &found, nil
		}
		if err != nil && !errors.IsNotFound(err) {
			log.Debug().Err(err).Str("id", id).Str("version", version).Msg("Fallback lookup failed")
		}
	}
	return nil, errors.NewAssetNotFoundError(kind.String(), id, len(versions))
}
