package tftmeta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
)

func newTestClient(t *testing.T, a *fakeDDragon, b *fakeCDragon, clock *testClock, opts ...Option) Client {
	t.Helper()
	logging.DisableLoggingForTest(t)
	base := []Option{
		WithProviders(a, b),
		WithCurrentSet("14"),
		WithClock(clock.Now),
		WithCacheTTL(time.Hour),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResolve(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())

	snap, err := c.Resolve(context.Background(), ResolveOptions{})
	require.NoError(t, err)

	assert.Equal(t, "14.2.1", snap.Version)
	assert.False(t, snap.VersionFallback)
	assert.Equal(t, "A", snap.AssetSource)
	assert.Equal(t, "14", snap.CurrentSet)
	assert.Equal(t, "2026-05-01T08:00:00Z", snap.BuiltAt.Time.Format(time.RFC3339))

	require.Len(t, snap.Units, 1)
	ahri := snap.Units[0]
	assert.Equal(t, "https://ddragon.leagueoflegends.com/cdn/14.2.1/img/tft-champion/TFT14_Ahri.png", ahri.Icon)
	assert.Equal(t, []string{"TFT14_Arcana"}, ahri.Unit.Traits)
	require.NotNil(t, ahri.Unit.Cost)
	assert.Equal(t, 4, *ahri.Unit.Cost)

	require.Len(t, snap.Augments, 1)
	assert.Equal(t, 4, snap.NameIndex.Len())
	name, ok := snap.NameIndex.Get("tft14_augment_cyber")
	assert.True(t, ok)
	assert.Equal(t, "Cybernetic Implants", name)
}

func TestResolveAssetSourceB(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())

	snap, err := c.Resolve(context.Background(), ResolveOptions{AssetSource: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", snap.AssetSource)
	assert.Equal(t,
		"https://raw.communitydragon.org/latest/game/ASSETS/Characters/TFT14_Ahri/HUD/TFT14_Ahri_Square.png",
		snap.Units[0].Icon)

	t.Run("lowercase paths", func(t *testing.T) {
		a, b := newFakes()
		c := newTestClient(t, a, b, newTestClock(), WithLowercasePaths(true))
		snap, err := c.Resolve(context.Background(), ResolveOptions{AssetSource: "b"})
		require.NoError(t, err)
		assert.Equal(t,
			"https://raw.communitydragon.org/latest/game/assets/characters/tft14_ahri/hud/tft14_ahri_square.png",
			snap.Units[0].Icon)
	})
}

func TestResolveInvalidAssetSource(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())

	_, err := c.Resolve(context.Background(), ResolveOptions{AssetSource: "C"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, int32(0), a.fetches.Load())
}

func TestResolveIsIdempotentWithinTTL(t *testing.T) {
	a, b := newFakes()
	clock := newTestClock()
	c := newTestClient(t, a, b, clock)
	ctx := context.Background()

	first, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	second, err := c.Resolve(ctx, ResolveOptions{AssetSource: "A"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), a.fetches.Load(), "one pipeline run")
	assert.Equal(t, first, second)

	stats := c.CacheStats()
	assert.Equal(t, 1, stats.ItemCount)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestResolveKeysByVersion(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())
	ctx := context.Background()

	latest, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	pinned, err := c.Resolve(ctx, ResolveOptions{Version: "14.1.1"})
	require.NoError(t, err)

	assert.Equal(t, "14.2.1", latest.Version)
	assert.Equal(t, "14.1.1", pinned.Version)
	assert.Equal(t, int32(2), a.fetches.Load())
	assert.Equal(t, 2, c.CacheStats().ItemCount)
}

func TestResolveRebuildsAfterTTL(t *testing.T) {
	a, b := newFakes()
	clock := newTestClock()
	c := newTestClient(t, a, b, clock)
	ctx := context.Background()

	var built int
	var updated []string
	c.OnSnapshotBuilt(func(key string, previous, current *catalogs.Snapshot) {
		built++
		assert.Equal(t, "A|latest", key)
	})
	c.OnRecordUpdated(func(old, new catalogs.Record) {
		updated = append(updated, new.APIName)
	})

	_, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)

	b.rename(catalogs.KindAugment, "TFT14_Augment_Cyber", "Cybernetic Implants II")
	clock.Advance(time.Hour + time.Second)

	snap, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), a.fetches.Load())
	assert.Equal(t, "Cybernetic Implants II", snap.Augments[0].DisplayName)
	assert.Equal(t, 2, built)
	// Only the renamed record differs between the two snapshots.
	assert.Equal(t, []string{"TFT14_Augment_Cyber"}, updated)

	stats := c.CacheStats()
	assert.Equal(t, int64(0), stats.StaleHits, "a successful rebuild serves nothing stale")
	assert.Equal(t, int64(2), stats.Misses)
}

func TestHookCanRegisterHooks(t *testing.T) {
	a, b := newFakes()
	clock := newTestClock()
	c := newTestClient(t, a, b, clock)

	var nested int
	c.OnSnapshotBuilt(func(string, *catalogs.Snapshot, *catalogs.Snapshot) {
		c.OnSnapshotBuilt(func(string, *catalogs.Snapshot, *catalogs.Snapshot) { nested++ })
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Resolve(context.Background(), ResolveOptions{})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve blocked while a hook registered another hook")
	}
	assert.Equal(t, 0, nested, "hooks added during dispatch fire from the next event")

	clock.Advance(2 * time.Hour)
	_, err := c.Resolve(context.Background(), ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, nested)
}

func TestResolveServesStale(t *testing.T) {
	a, b := newFakes()
	clock := newTestClock()
	c := newTestClient(t, a, b, clock)
	ctx := context.Background()

	var staleCause error
	c.OnStaleServed(func(key string, stale *catalogs.Snapshot, cause error) {
		staleCause = cause
	})

	first, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)

	a.down.Store(true)
	b.down.Store(true)
	clock.Advance(2 * time.Hour)

	second, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	assert.Same(t, first, second)
	require.Error(t, staleCause)
	assert.True(t, errors.IsIncompleteCatalog(staleCause))
	assert.Equal(t, int64(1), c.CacheStats().StaleHits)
}

func TestResolveDataUnavailable(t *testing.T) {
	a, b := newFakes()
	a.down.Store(true)
	b.down.Store(true)
	c := newTestClient(t, a, b, newTestClock())

	snap, err := c.Resolve(context.Background(), ResolveOptions{})
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.IsDataUnavailable(err))
	assert.True(t, errors.IsIncompleteCatalog(err))
	assert.Equal(t, 0, c.CacheStats().ItemCount)
}

func TestResolveOneProviderDown(t *testing.T) {
	t.Run("A down uses B and the fallback version", func(t *testing.T) {
		a, b := newFakes()
		a.down.Store(true)
		c := newTestClient(t, a, b, newTestClock(), WithFallbackVersion("14.1.1"))

		snap, err := c.Resolve(context.Background(), ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, "14.1.1", snap.Version)
		assert.True(t, snap.VersionFallback)
		require.Len(t, snap.Units, 1)
		assert.Equal(t, []catalogs.ProviderID{catalogs.ProviderCDragon}, snap.Units[0].Sources)
	})

	t.Run("B down uses A", func(t *testing.T) {
		a, b := newFakes()
		b.down.Store(true)
		c := newTestClient(t, a, b, newTestClock())

		snap, err := c.Resolve(context.Background(), ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, []catalogs.ProviderID{catalogs.ProviderDDragon}, snap.Units[0].Sources)
		assert.Empty(t, snap.Augments)
	})
}

func TestInvalidate(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())
	ctx := context.Background()

	_, err := c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ResolveOptions{AssetSource: "A"}))
	_, err = c.Resolve(ctx, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), a.fetches.Load())

	assert.True(t, errors.IsValidationError(c.Invalidate(ResolveOptions{AssetSource: "Z"})))
}

func TestActiveTraitStyle(t *testing.T) {
	a, b := newFakes()
	c := newTestClient(t, a, b, newTestClock())

	snap, err := c.Resolve(context.Background(), ResolveOptions{})
	require.NoError(t, err)

	t.Run("between breakpoints", func(t *testing.T) {
		act := c.ActiveTraitStyle("TFT14_Arcana", 5, snap)
		assert.Equal(t, catalogs.StyleSilver, act.Style)
		assert.Equal(t, 4, act.MinUnitCount)
		require.NotNil(t, act.NextThreshold)
		assert.Equal(t, 6, *act.NextThreshold)
		assert.Equal(t, catalogs.StyleGold, *act.NextStyle)
	})

	t.Run("normalized name", func(t *testing.T) {
		act := c.ActiveTraitStyle("tft14_arcana", 6, snap)
		assert.Equal(t, catalogs.StyleGold, act.Style)
		assert.Nil(t, act.NextThreshold)
	})

	t.Run("below first breakpoint", func(t *testing.T) {
		act := c.ActiveTraitStyle("TFT14_Arcana", 1, snap)
		assert.False(t, act.IsActive())
		require.NotNil(t, act.NextThreshold)
		assert.Equal(t, 2, *act.NextThreshold)
	})

	t.Run("unknown trait", func(t *testing.T) {
		act := c.ActiveTraitStyle("TFT14_Nope", 9, snap)
		assert.Equal(t, catalogs.StyleInactive, act.Style)
		assert.Nil(t, act.NextThreshold)
		assert.Nil(t, act.NextStyle)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		assert.False(t, ActiveTraitStyle("TFT14_Arcana", 4, nil).IsActive())
	})
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero ttl", WithCacheTTL(0)},
		{"negative retries", WithRetries(-1)},
		{"empty set", WithCurrentSet("")},
		{"empty locale", WithLocale("")},
		{"zero timeout", WithHTTPTimeout(0)},
		{"no lookups", WithMaxConcurrentLookups(0)},
		{"nil clock", WithClock(nil)},
		{"nil providers", WithProviders(nil, nil)},
		{"nil authorities", WithAuthorities(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCallTimeoutFitsRetries(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, constants.ProviderCallTimeout, cfg.callTimeout())
	assert.Less(t, cfg.httpTimeout, cfg.callTimeout(), "one attempt fits well inside the call bound")

	require.NoError(t, cfg.apply(WithHTTPTimeout(15*time.Second), WithRetries(3)))
	assert.Equal(t, 4*15*time.Second+3*constants.MaxRetryBackoff, cfg.callTimeout())
}

func TestResolveOptionsKey(t *testing.T) {
	key, err := ResolveOptions{}.Key()
	require.NoError(t, err)
	assert.Equal(t, "A|latest", key)

	key, err = ResolveOptions{AssetSource: " b ", Version: "14.2.1"}.Key()
	require.NoError(t, err)
	assert.Equal(t, "B|14.2.1", key)
}
