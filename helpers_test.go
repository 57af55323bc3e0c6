package tftmeta

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/errors"
)

// fakeDDragon is an in-memory versioned provider.
type fakeDDragon struct {
	versions []string
	records  map[catalogs.Kind][]catalogs.Record
	down     atomic.Bool
	fetches  atomic.Int32 // FetchAll(unit) calls, one per pipeline run
}

func (f *fakeDDragon) ID() catalogs.ProviderID { return catalogs.ProviderDDragon }

func (f *fakeDDragon) Versions(context.Context) ([]string, error) {
	if f.down.Load() {
		return nil, errors.NewAPIError("ddragon", 503, "down")
	}
	return f.versions, nil
}

func (f *fakeDDragon) FetchAll(_ context.Context, kind catalogs.Kind, _ string) ([]catalogs.Record, error) {
	if kind == catalogs.KindUnit {
		f.fetches.Add(1)
	}
	if f.down.Load() {
		return nil, errors.NewAPIError("ddragon", 503, "down")
	}
	return cloneRecords(f.records[kind]), nil
}

func (f *fakeDDragon) FetchOne(_ context.Context, kind catalogs.Kind, id, _ string) (*catalogs.Record, error) {
	return nil, errors.NewAssetNotFoundError(kind.String(), id, 1)
}

// fakeCDragon is an in-memory latest provider with a roster.
type fakeCDragon struct {
	mu      sync.Mutex
	records map[catalogs.Kind][]catalogs.Record
	down    atomic.Bool
}

func (f *fakeCDragon) ID() catalogs.ProviderID { return catalogs.ProviderCDragon }

func (f *fakeCDragon) FetchAll(_ context.Context, kind catalogs.Kind) ([]catalogs.Record, error) {
	if f.down.Load() {
		return nil, errors.NewAPIError("cdragon", 503, "down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRecords(f.records[kind]), nil
}

func (f *fakeCDragon) ListIDs(_ context.Context, kind catalogs.Kind) ([]string, error) {
	if f.down.Load() {
		return nil, errors.NewAPIError("cdragon", 503, "down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, r := range f.records[kind] {
		ids = append(ids, r.APIName)
	}
	return ids, nil
}

func (f *fakeCDragon) rename(kind catalogs.Kind, apiName, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records[kind] {
		if f.records[kind][i].APIName == apiName {
			f.records[kind][i].DisplayName = name
		}
	}
}

func cloneRecords(in []catalogs.Record) []catalogs.Record {
	out := make([]catalogs.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func record(kind catalogs.Kind, provider catalogs.ProviderID, apiName, name, icon string) catalogs.Record {
	r := catalogs.Record{
		Kind: kind, APIName: apiName, DisplayName: name,
		Icon: icon, IconSource: provider,
		Sources: []catalogs.ProviderID{provider},
	}
	switch kind {
	case catalogs.KindUnit:
		r.Unit = &catalogs.UnitDetails{}
	case catalogs.KindItem:
		r.Item = &catalogs.ItemDetails{}
	case catalogs.KindTrait:
		r.Trait = &catalogs.TraitDetails{}
	}
	return r
}

func newFakes() (*fakeDDragon, *fakeCDragon) {
	cost := 4
	ahriA := record(catalogs.KindUnit, catalogs.ProviderDDragon, "TFT14_Ahri", "Ahri", "tft-champion/TFT14_Ahri.png")
	ahriA.Unit.Cost = &cost
	ahriB := record(catalogs.KindUnit, catalogs.ProviderCDragon, "TFT14_Ahri", "Ahri", "ASSETS/Characters/TFT14_Ahri/HUD/TFT14_Ahri_Square.tex")
	ahriB.Unit.Traits = []string{"TFT14_Arcana"}

	arcanaB := record(catalogs.KindTrait, catalogs.ProviderCDragon, "TFT14_Arcana", "Arcana", "ASSETS/UX/TraitIcons/Trait_Icon_14_Arcana.tex")
	arcanaB.Trait.RawEffects = []catalogs.RawEffect{
		{MinUnits: 2, Style: 1}, {MinUnits: 4, Style: 2}, {MinUnits: 6, Style: 3},
	}

	a := &fakeDDragon{
		versions: []string{"15.1.1", "14.2.1", "14.1.1"},
		records: map[catalogs.Kind][]catalogs.Record{
			catalogs.KindUnit:  {ahriA},
			catalogs.KindItem:  {record(catalogs.KindItem, catalogs.ProviderDDragon, "TFT_Item_Deathblade", "Deathblade", "tft-item/TFT_Item_Deathblade.png")},
			catalogs.KindTrait: {record(catalogs.KindTrait, catalogs.ProviderDDragon, "TFT14_Arcana", "Arcana", "tft-trait/Trait_Icon_14_Arcana.png")},
		},
	}
	b := &fakeCDragon{
		records: map[catalogs.Kind][]catalogs.Record{
			catalogs.KindUnit:    {ahriB},
			catalogs.KindItem:    {record(catalogs.KindItem, catalogs.ProviderCDragon, "TFT_Item_Deathblade", "Deathblade", "ASSETS/Maps/TFT/Icons/Items/Deathblade.tex")},
			catalogs.KindTrait:   {arcanaB},
			catalogs.KindAugment: {record(catalogs.KindAugment, catalogs.ProviderCDragon, "TFT14_Augment_Cyber", "Cybernetic Implants", "ASSETS/Maps/TFT/Icons/Augments/Cyber.tex")},
		},
	}
	return a, b
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
