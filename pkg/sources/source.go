// Package sources defines the provider contracts the reconciliation
// pipeline consumes.
//
// Data Dragon implements VersionedCatalog: every release is addressable
// and each kind is published per locale. Community Dragon implements
// LatestCatalog and IDLister: a single always-current document whose set
// roster is the authoritative list of ids that must appear in a snapshot.
//
// Example usage:
//
//	a := ddragon.New(ddragon.WithLocale("en_US"))
//	b := cdragon.New()
//
//	units, err := a.FetchAll(ctx, catalogs.KindUnit, "14.2.1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, _ := b.ListIDs(ctx, catalogs.KindUnit)
package sources

import (
	"context"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// VersionedCatalog is a provider with per-release catalogs, i.e. Data Dragon.
type VersionedCatalog interface {
	// ID identifies the provider.
	ID() catalogs.ProviderID

	// Versions returns the published version index, newest first.
	Versions(ctx context.Context) ([]string, error)

	// FetchAll returns every record of kind at version.
	FetchAll(ctx context.Context, kind catalogs.Kind, version string) ([]catalogs.Record, error)

	// FetchOne returns a single record. A missing id yields an
	// AssetNotFoundError.
	FetchOne(ctx context.Context, kind catalogs.Kind, id, version string) (*catalogs.Record, error)
}

// LatestCatalog is a provider with one always-current catalog, i.e.
// Community Dragon.
type LatestCatalog interface {
	// ID identifies the provider.
	ID() catalogs.ProviderID

	// FetchAll returns every record of kind.
	FetchAll(ctx context.Context, kind catalogs.Kind) ([]catalogs.Record, error)
}

// IDLister lists the ids a complete snapshot must contain.
type IDLister interface {
	ListIDs(ctx context.Context, kind catalogs.Kind) ([]string, error)
}

// Pinner is implemented by latest catalogs that download a single
// document. Pin fetches it once and returns a view fixed to that download,
// so every kind and the roster of one pipeline run read the same content.
// The view also implements IDLister when the catalog does.
type Pinner interface {
	Pin(ctx context.Context) (LatestCatalog, error)
}
