package reconcile

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/sources"
)

// fakeA is an in-memory Data Dragon.
type fakeA struct {
	mu       sync.Mutex
	versions []string
	bulk     map[catalogs.Kind][]catalogs.Record
	bulkErr  map[catalogs.Kind]error
	history  map[string][]catalogs.Record // version -> records for FetchOne
	lookups  map[string]int               // id -> FetchOne calls
	hang     bool                         // FetchAll blocks until ctx is done
}

func newFakeA(versions ...string) *fakeA {
	return &fakeA{
		versions: versions,
		bulk:     make(map[catalogs.Kind][]catalogs.Record),
		bulkErr:  make(map[catalogs.Kind]error),
		history:  make(map[string][]catalogs.Record),
		lookups:  make(map[string]int),
	}
}

func (f *fakeA) ID() catalogs.ProviderID { return catalogs.ProviderDDragon }

func (f *fakeA) Versions(context.Context) ([]string, error) { return f.versions, nil }

func (f *fakeA) FetchAll(ctx context.Context, kind catalogs.Kind, _ string) ([]catalogs.Record, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.bulkErr[kind]; err != nil {
		return nil, err
	}
	return cloneAll(f.bulk[kind]), nil
}

func (f *fakeA) FetchOne(_ context.Context, kind catalogs.Kind, id, version string) (*catalogs.Record, error) {
	f.mu.Lock()
	f.lookups[id]++
	f.mu.Unlock()

	for _, rec := range f.history[version] {
		if rec.Kind == kind && catalogs.SameAPIName(rec.APIName, id) {
			c := rec.Clone()
			return &c, nil
		}
	}
	return nil, errors.NewAssetNotFoundError(kind.String(), id, 1)
}

func (f *fakeA) lookupCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups[id]
}

// fakeB is an in-memory Community Dragon that also serves the roster.
type fakeB struct {
	bulk    map[catalogs.Kind][]catalogs.Record
	bulkErr map[catalogs.Kind]error
	roster  map[catalogs.Kind][]string
}

func newFakeB() *fakeB {
	return &fakeB{
		bulk:    make(map[catalogs.Kind][]catalogs.Record),
		bulkErr: make(map[catalogs.Kind]error),
		roster:  make(map[catalogs.Kind][]string),
	}
}

func (f *fakeB) ID() catalogs.ProviderID { return catalogs.ProviderCDragon }

func (f *fakeB) FetchAll(_ context.Context, kind catalogs.Kind) ([]catalogs.Record, error) {
	if err := f.bulkErr[kind]; err != nil {
		return nil, err
	}
	return cloneAll(f.bulk[kind]), nil
}

func (f *fakeB) ListIDs(_ context.Context, kind catalogs.Kind) ([]string, error) {
	return f.roster[kind], nil
}

// pinningB serves a pinned view of fakeB and counts how it is read.
type pinningB struct {
	*fakeB
	pinErr error
	pins   atomic.Int32
	direct atomic.Int32
}

func (p *pinningB) FetchAll(ctx context.Context, kind catalogs.Kind) ([]catalogs.Record, error) {
	p.direct.Add(1)
	return p.fakeB.FetchAll(ctx, kind)
}

func (p *pinningB) Pin(context.Context) (sources.LatestCatalog, error) {
	p.pins.Add(1)
	if p.pinErr != nil {
		return nil, p.pinErr
	}
	return p.fakeB, nil
}

func cloneAll(in []catalogs.Record) []catalogs.Record {
	out := make([]catalogs.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func intPtr(v int) *int { return &v }

func unitA(apiName, name string, cost int, traits ...string) catalogs.Record {
	return catalogs.Record{
		Kind: catalogs.KindUnit, APIName: apiName, DisplayName: name,
		Icon: "tft-champion/" + apiName + ".png", IconSource: catalogs.ProviderDDragon,
		Sources: []catalogs.ProviderID{catalogs.ProviderDDragon},
		Unit:    &catalogs.UnitDetails{Cost: intPtr(cost), Traits: traits},
	}
}

func unitB(apiName, name string, cost int, traits ...string) catalogs.Record {
	return catalogs.Record{
		Kind: catalogs.KindUnit, APIName: apiName, DisplayName: name,
		Icon: "ASSETS/Characters/" + apiName + "_Square.tex", IconSource: catalogs.ProviderCDragon,
		Sources: []catalogs.ProviderID{catalogs.ProviderCDragon},
		Unit:    &catalogs.UnitDetails{Cost: intPtr(cost), Traits: traits},
	}
}

func itemRec(provider catalogs.ProviderID, apiName, name string, composition ...string) catalogs.Record {
	return catalogs.Record{
		Kind: catalogs.KindItem, APIName: apiName, DisplayName: name,
		Icon: "icons/" + apiName + ".png", IconSource: provider,
		Sources: []catalogs.ProviderID{provider},
		Item:    &catalogs.ItemDetails{Composition: composition},
	}
}

func traitRec(provider catalogs.ProviderID, apiName, name string, effects ...catalogs.RawEffect) catalogs.Record {
	return catalogs.Record{
		Kind: catalogs.KindTrait, APIName: apiName, DisplayName: name,
		Icon: "traits/" + apiName + ".png", IconSource: provider,
		Sources: []catalogs.ProviderID{provider},
		Trait:   &catalogs.TraitDetails{RawEffects: effects},
	}
}

// seededProviders returns providers with one record of every required kind.
func seededProviders() (*fakeA, *fakeB) {
	a := newFakeA("14.3.1", "14.2.1", "14.1.1", "13.24.1")
	b := newFakeB()

	a.bulk[catalogs.KindUnit] = []catalogs.Record{unitA("TFT14_Ahri", "Ahri", 4, "TFT14_Arcana")}
	b.bulk[catalogs.KindUnit] = []catalogs.Record{unitB("TFT14_Ahri", "Ahri (B)", 4, "TFT14_Arcana", "TFT14_Scholar")}

	a.bulk[catalogs.KindItem] = []catalogs.Record{
		itemRec(catalogs.ProviderDDragon, "TFT_Item_Deathblade", "Deathblade", "TFT_Item_BFSword", "TFT_Item_BFSword"),
	}
	b.bulk[catalogs.KindItem] = []catalogs.Record{
		itemRec(catalogs.ProviderCDragon, "TFT_Item_Deathblade", "Deathblade", "TFT_Item_BFSword", "TFT_Item_BFSword", "TFT_Item_Spatula"),
	}

	a.bulk[catalogs.KindTrait] = []catalogs.Record{traitRec(catalogs.ProviderDDragon, "TFT14_Arcana", "Arcana")}
	b.bulk[catalogs.KindTrait] = []catalogs.Record{
		traitRec(catalogs.ProviderCDragon, "TFT14_Arcana", "Arcana",
			catalogs.RawEffect{MinUnits: 2, Style: 1},
			catalogs.RawEffect{MinUnits: 4, Style: 2},
			catalogs.RawEffect{MinUnits: 6, Style: 3},
		),
	}
	return a, b
}
