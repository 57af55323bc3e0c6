// Package reconcile merges Data Dragon and Community Dragon catalogs into
// a single immutable snapshot.
//
// Every kind is fetched from both providers in parallel, joined on the
// normalized apiName and merged field by field through a static
// Authorities table. Ids that the authoritative roster lists but neither
// bulk result contains are recovered by walking older Data Dragon versions.
package reconcile

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/agentstation/utc"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tftmeta/pkg/assets"
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
	"github.com/agentstation/tftmeta/pkg/sources"
	"github.com/agentstation/tftmeta/pkg/thresholds"
	"github.com/agentstation/tftmeta/pkg/versions"
)

// Reconciler builds snapshots. It holds no per-run state and is safe for
// concurrent use.
type Reconciler struct {
	a           sources.VersionedCatalog
	b           sources.LatestCatalog
	authorities Authorities
	callTimeout time.Duration
	maxLookups  int
	assetOpts   []assets.Option
	now         func() utc.Time
}

// Option configures a Reconciler
type Option func(*Reconciler) error

// WithAuthorities replaces the precedence table.
func WithAuthorities(a Authorities) Option {
	return func(r *Reconciler) error {
		if a == nil {
			return errors.NewValidationError("authorities", nil, "must not be nil")
		}
		r.authorities = a
		return nil
	}
}

// WithCallTimeout bounds every provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Reconciler) error {
		if d <= 0 {
			return errors.NewValidationError("call_timeout", d, "must be positive")
		}
		r.callTimeout = d
		return nil
	}
}

// WithMaxConcurrentLookups bounds concurrent fallback searches per kind.
func WithMaxConcurrentLookups(n int) Option {
	return func(r *Reconciler) error {
		if n < 1 {
			return errors.NewValidationError("max_concurrent_lookups", n, "must be at least 1")
		}
		r.maxLookups = n
		return nil
	}
}

// WithAssetOptions configures URL canonicalization.
func WithAssetOptions(opts ...assets.Option) Option {
	return func(r *Reconciler) error {
		r.assetOpts = append(r.assetOpts, opts...)
		return nil
	}
}

// WithClock overrides the time source used to stamp snapshots.
func WithClock(now func() utc.Time) Option {
	return func(r *Reconciler) error {
		r.now = now
		return nil
	}
}

// New creates a Reconciler over both providers.
func New(a sources.VersionedCatalog, b sources.LatestCatalog, opts ...Option) (*Reconciler, error) {
	if a == nil || b == nil {
		return nil, errors.NewValidationError("provider", nil, "both catalogs are required")
	}
	r := &Reconciler{
		a:           a,
		b:           b,
		authorities: DefaultAuthorities(),
		callTimeout: constants.ProviderCallTimeout,
		maxLookups:  constants.MaxConcurrentLookups,
		now:         utc.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Request describes one pipeline run.
type Request struct {
	Resolution  versions.Resolution
	CurrentSet  string
	AssetSource string // "A" or "B"; empty means "A"
}

// kindResult is the output of reconciling one kind.
type kindResult struct {
	records []catalogs.Record
	stats   catalogs.KindStats
}

// Build runs the full pipeline and returns a new snapshot. Provider
// failures are absorbed per kind; the only error returned after fetching
// is an IncompleteCatalogError when a required kind ends up empty.
func (r *Reconciler) Build(ctx context.Context, req Request) (*catalogs.Snapshot, error) {
	provider, err := catalogs.ProviderForAssetSource(req.AssetSource)
	if err != nil {
		return nil, err
	}
	if req.Resolution.Version == "" {
		return nil, errors.NewValidationError("version", "", "resolution has no version")
	}

	ctx = logging.WithVersion(ctx, req.Resolution.Version)
	log := logging.FromContext(ctx)
	merger := NewMerger(r.authorities, provider)
	latest := r.pin(ctx)
	kinds := catalogs.Kinds()
	results := make([]kindResult, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			results[i] = r.reconcileKind(ctx, kind, req.Resolution, merger, latest)
			return nil
		})
	}
	_ = g.Wait()

	var missing []string
	for i, kind := range kinds {
		if slices.Contains(catalogs.RequiredKinds(), kind) && len(results[i].records) == 0 {
			missing = append(missing, kind.String())
		}
	}
	if len(missing) > 0 {
		err := errors.NewIncompleteCatalogError(missing...)
		log.Error().Err(err).Msg("Catalog incomplete after merge")
		return nil, err
	}

	snap := r.assemble(ctx, req, provider, kinds, results)
	log.Info().
		Int("units", snap.Count(catalogs.KindUnit)).
		Int("items", snap.Count(catalogs.KindItem)).
		Int("traits", snap.Count(catalogs.KindTrait)).
		Int("augments", snap.Count(catalogs.KindAugment)).
		Int("recovered", snap.Stats.Recovered).
		Int("dropped", snap.Stats.Dropped).
		Msg("Snapshot built")
	return snap, nil
}

// pin fixes the latest catalog to a single download for this run when the
// catalog supports it. A failed download is reported by every kind.
func (r *Reconciler) pin(ctx context.Context) sources.LatestCatalog {
	p, ok := r.b.(sources.Pinner)
	if !ok {
		return r.b
	}
	pinned, err := bounded(ctx, r.callTimeout, p.Pin)
	if err != nil {
		return unavailable{id: r.b.ID(), err: err}
	}
	return pinned
}

// unavailable stands in for a latest catalog whose download failed.
type unavailable struct {
	id  catalogs.ProviderID
	err error
}

func (u unavailable) ID() catalogs.ProviderID { return u.id }

func (u unavailable) FetchAll(context.Context, catalogs.Kind) ([]catalogs.Record, error) {
	return nil, u.err
}

func (u unavailable) ListIDs(context.Context, catalogs.Kind) ([]string, error) {
	return nil, u.err
}

// reconcileKind fetches, joins, merges and recovers one kind.
func (r *Reconciler) reconcileKind(ctx context.Context, kind catalogs.Kind, res versions.Resolution, merger *Merger, b sources.LatestCatalog) kindResult {
	ctx = logging.WithKind(ctx, kind.String())
	log := logging.FromContext(ctx)

	var (
		aRecs, bRecs []catalogs.Record
		ids          []string
		aErr, bErr   error
		idErr        error
		g            errgroup.Group
	)
	g.Go(func() error {
		aRecs, aErr = bounded(ctx, r.callTimeout, func(ctx context.Context) ([]catalogs.Record, error) {
			return r.a.FetchAll(ctx, kind, res.Version)
		})
		return nil
	})
	g.Go(func() error {
		bRecs, bErr = bounded(ctx, r.callTimeout, func(ctx context.Context) ([]catalogs.Record, error) {
			return b.FetchAll(ctx, kind)
		})
		return nil
	})
	if lister, ok := b.(sources.IDLister); ok {
		g.Go(func() error {
			ids, idErr = bounded(ctx, r.callTimeout, func(ctx context.Context) ([]string, error) {
				return lister.ListIDs(ctx, kind)
			})
			return nil
		})
	}
	_ = g.Wait()

	var stats catalogs.KindStats
	for _, failure := range []struct {
		provider catalogs.ProviderID
		op       string
		err      error
	}{
		{r.a.ID(), "fetch_all", aErr},
		{b.ID(), "fetch_all", bErr},
		{b.ID(), "list_ids", idErr},
	} {
		if failure.err == nil {
			continue
		}
		err := errors.NewProviderUnavailableError(failure.provider.String(), failure.op, failure.err)
		stats.Errors = append(stats.Errors, err.Error())
		log.Warn().Err(err).Msg("Provider call failed")
	}

	// Join on the normalized apiName; the first variant from a provider wins.
	type pair struct{ a, b *catalogs.Record }
	working := make(map[string]*pair)
	var order []string
	add := func(recs []catalogs.Record, fromA bool) int {
		added := 0
		for i := range recs {
			rec := &recs[i]
			key := rec.Key()
			if key == "" || rec.Kind != kind {
				continue
			}
			p, ok := working[key]
			if !ok {
				p = &pair{}
				working[key] = p
				order = append(order, key)
			}
			slot := &p.b
			if fromA {
				slot = &p.a
			}
			if *slot != nil {
				log.Debug().Str("id", rec.APIName).Msg("Duplicate variant collapsed")
				continue
			}
			*slot = rec
			added++
		}
		return added
	}
	stats.FromA = add(aRecs, true)
	stats.FromB = add(bRecs, false)

	merged := make([]catalogs.Record, 0, len(order))
	for _, key := range order {
		p := working[key]
		merged = append(merged, merger.Merge(p.a, p.b))
	}

	var missing []string
	for _, id := range ids {
		key := catalogs.NormalizeAPIName(id)
		if key == "" {
			continue
		}
		if _, ok := working[key]; ok {
			continue
		}
		working[key] = &pair{}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		older := versions.Older(res.Versions, res.Version)
		var mu sync.Mutex
		var lg errgroup.Group
		lg.SetLimit(r.maxLookups)
		for _, id := range missing {
			lg.Go(func() error {
				rec, err := Search(ctx, kind, id, older, func(ctx context.Context, version string) (*catalogs.Record, error) {
					return bounded(ctx, r.callTimeout, func(ctx context.Context) (*catalogs.Record, error) {
						return r.a.FetchOne(ctx, kind, id, version)
					})
				})

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					stats.Dropped++
					log.Warn().Err(err).Str("id", id).Msg("Asset dropped")
					return nil
				}
				merged = append(merged, merger.Merge(rec, nil))
				stats.Recovered++
				return nil
			})
		}
		_ = lg.Wait()
	}

	valid := merged[:0]
	for _, rec := range merged {
		if err := rec.Validate(); err != nil {
			stats.Dropped++
			log.Warn().Err(err).Str("id", rec.APIName).Msg("Invalid record dropped")
			continue
		}
		valid = append(valid, rec)
	}
	stats.Merged = len(valid)

	log.Info().
		Int("from_a", stats.FromA).
		Int("from_b", stats.FromB).
		Int("merged", stats.Merged).
		Int("recovered", stats.Recovered).
		Int("dropped", stats.Dropped).
		Msg("Kind reconciled")
	return kindResult{records: valid, stats: stats}
}

// assemble canonicalizes, indexes and sorts the merged kinds into a snapshot.
func (r *Reconciler) assemble(ctx context.Context, req Request, provider catalogs.ProviderID, kinds []catalogs.Kind, results []kindResult) *catalogs.Snapshot {
	log := logging.FromContext(ctx)

	source := catalogs.AssetSourceA
	if provider == catalogs.ProviderCDragon {
		source = catalogs.AssetSourceB
	}
	snap := &catalogs.Snapshot{
		Version:         req.Resolution.Version,
		VersionFallback: req.Resolution.Fallback,
		CurrentSet:      req.CurrentSet,
		AssetSource:     source,
		BuiltAt:         r.now(),
		TraitThresholds: make(map[string][]catalogs.TraitEffect),
		NameIndex:       catalogs.NewNameIndex(),
		Stats:           catalogs.BuildStats{PerKind: make(map[catalogs.Kind]catalogs.KindStats, len(kinds))},
	}

	// Recovered records point at the version they were found at.
	canon := make(map[string]*assets.Canonicalizer)
	canonicalizer := func(version string) *assets.Canonicalizer {
		if version == "" {
			version = req.Resolution.Version
		}
		c, ok := canon[version]
		if !ok {
			c = assets.New(version, r.assetOpts...)
			canon[version] = c
		}
		return c
	}

	for i, kind := range kinds {
		records := results[i].records
		for j := range records {
			rec := &records[j]
			canonicalizeIcons(ctx, canonicalizer(rec.FoundAtVersion), rec)
			if kind == catalogs.KindTrait && rec.Trait != nil {
				snap.TraitThresholds[rec.APIName] = thresholds.Build(rec.Trait.RawEffects)
			}
		}
		catalogs.SortRecords(records)
		snap.SetRecords(kind, records)

		snap.Stats.PerKind[kind] = results[i].stats
		snap.Stats.Recovered += results[i].stats.Recovered
		snap.Stats.Dropped += results[i].stats.Dropped
	}

	for _, kind := range kinds {
		for _, rec := range snap.Records(kind) {
			if !snap.NameIndex.Add(rec.APIName, rec.DisplayName) {
				log.Debug().Str("kind", kind.String()).Str("id", rec.APIName).Msg("Name already indexed by an earlier kind")
			}
		}
	}
	return snap
}

// canonicalizeIcons replaces provider references with absolute URLs.
// Malformed references degrade to "". A record no provider gave an icon
// gets one derived from its apiName.
func canonicalizeIcons(ctx context.Context, c *assets.Canonicalizer, rec *catalogs.Record) {
	iconRef, iconSrc := rec.Icon, rec.IconSource
	if iconRef == "" && rec.TileIcon == "" {
		if derived := c.Derived(rec.Kind, rec.APIName); derived != "" {
			iconRef, iconSrc = derived, catalogs.ProviderCDragon
			logging.FromContext(ctx).Trace().Str("id", rec.APIName).Str("icon", derived).Msg("Icon derived from apiName")
		}
	}

	icon, err := c.Canonicalize(iconRef, iconSrc)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("id", rec.APIName).Msg("Icon reference dropped")
	}

	tileSrc := rec.TileSource
	if rec.TileIcon == "" {
		tileSrc = iconSrc
	}
	tile, err := c.Tile(iconRef, iconSrc, rec.TileIcon, rec.TileSource)
	if err != nil {
		tile, tileSrc = "", iconSrc
		if icon != "" {
			tile = assets.TileURL(icon)
		}
	}

	rec.Icon, rec.TileIcon = icon, tile
	rec.IconSource, rec.TileSource = sourceIfSet(icon, iconSrc), sourceIfSet(tile, tileSrc)
}

func sourceIfSet(url string, id catalogs.ProviderID) catalogs.ProviderID {
	if url == "" {
		return ""
	}
	return id
}

// bounded runs fn under a per-call timeout.
func bounded[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}
