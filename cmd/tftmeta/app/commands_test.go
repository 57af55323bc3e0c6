package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tftmeta"
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/thresholds"
	"github.com/agentstation/tftmeta/pkg/versions"
)

// fakeClient implements the parts of tftmeta.Client the commands use.
type fakeClient struct {
	tftmeta.Client

	snap        *catalogs.Snapshot
	res         versions.Resolution
	resolveErr  error
	resolved    []tftmeta.ResolveOptions
	invalidated []tftmeta.ResolveOptions
}

func (f *fakeClient) Resolve(_ context.Context, opts tftmeta.ResolveOptions) (*catalogs.Snapshot, error) {
	f.resolved = append(f.resolved, opts)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.snap, nil
}

func (f *fakeClient) Invalidate(opts tftmeta.ResolveOptions) error {
	f.invalidated = append(f.invalidated, opts)
	return nil
}

func (f *fakeClient) Versions(context.Context) (versions.Resolution, error) {
	return f.res, nil
}

func (f *fakeClient) ActiveTraitStyle(name string, count int, snap *catalogs.Snapshot) thresholds.Activation {
	return tftmeta.ActiveTraitStyle(name, count, snap)
}

func (f *fakeClient) Close() error { return nil }

func newFakeClient() *fakeClient {
	arcana := catalogs.Record{
		Kind: catalogs.KindTrait, APIName: "TFT14_Arcana", DisplayName: "Arcana",
		Trait: &catalogs.TraitDetails{},
	}
	idx := catalogs.NewNameIndex()
	idx.Add(arcana.APIName, arcana.DisplayName)

	return &fakeClient{
		snap: &catalogs.Snapshot{
			Version:     "14.2.1",
			CurrentSet:  "14",
			AssetSource: "A",
			BuiltAt:     utc.New(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)),
			Traits:      []catalogs.Record{arcana},
			TraitThresholds: map[string][]catalogs.TraitEffect{
				"TFT14_Arcana": thresholds.Build([]catalogs.RawEffect{
					{MinUnits: 2, Style: 1}, {MinUnits: 4, Style: 2}, {MinUnits: 6, Style: 3},
				}),
			},
			NameIndex: idx,
		},
		res: versions.Resolution{Version: "14.2.1", Versions: []string{"15.1.1", "14.2.1", "14.1.1"}},
	}
}

func run(t *testing.T, fc *fakeClient, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a, err := New("1.2.3", "abc123", "2026-05-01", "test",
		WithConfig(&Config{AssetSource: "A", LogOutput: "discard"}),
		WithClient(fc),
		WithOutput(&buf),
	)
	require.NoError(t, err)
	err = a.Execute(context.Background(), args)
	return buf.String(), err
}

func TestResolveCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		fc := newFakeClient()
		out, err := run(t, fc, "resolve", "-o", "json")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "14.2.1", decoded["version"])
		assert.Equal(t, []tftmeta.ResolveOptions{{AssetSource: "A"}}, fc.resolved)
		assert.Empty(t, fc.invalidated)
	})

	t.Run("yaml with flags", func(t *testing.T) {
		fc := newFakeClient()
		out, err := run(t, fc, "resolve", "--asset-source", "B", "--patch", "14.1.1", "--refresh", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "version: 14.2.1")

		want := tftmeta.ResolveOptions{AssetSource: "B", Version: "14.1.1"}
		assert.Equal(t, []tftmeta.ResolveOptions{want}, fc.invalidated)
		assert.Equal(t, []tftmeta.ResolveOptions{want}, fc.resolved)
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, newFakeClient(), "resolve", "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "14.2.1")
		assert.Contains(t, out, "2026-05-01T08:00:00Z")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := run(t, newFakeClient(), "resolve", "-o", "xml")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("data unavailable", func(t *testing.T) {
		fc := newFakeClient()
		fc.resolveErr = errors.NewDataUnavailableError("A|latest", errors.NewIncompleteCatalogError("unit"))
		_, err := run(t, fc, "resolve", "-o", "json")
		require.Error(t, err)
		assert.True(t, errors.IsDataUnavailable(err))
	})
}

func TestVersionsCommand(t *testing.T) {
	out, err := run(t, newFakeClient(), "versions", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "15.1.1")
	assert.Contains(t, out, "14.1.1")

	out, err = run(t, newFakeClient(), "versions", "-n", "1", "-o", "json")
	require.NoError(t, err)
	var res versions.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "14.2.1", res.Version)
	assert.Equal(t, []string{"15.1.1"}, res.Versions)
}

func TestTraitCommand(t *testing.T) {
	t.Run("active", func(t *testing.T) {
		out, err := run(t, newFakeClient(), "trait", "TFT14_Arcana", "5", "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "Arcana with 5 units: silver (next: gold at 6)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, newFakeClient(), "trait", "tft14_arcana", "6", "-o", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"trait": "tft14_arcana",
			"name": "Arcana",
			"unit_count": 6,
			"activation": {"style": "gold", "min_unit_count": 6}
		}`, out)
	})

	t.Run("unknown", func(t *testing.T) {
		out, err := run(t, newFakeClient(), "trait", "TFT14_Nope", "3", "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "TFT14_Nope: unknown trait, inactive")
	})

	t.Run("bad count", func(t *testing.T) {
		_, err := run(t, newFakeClient(), "trait", "TFT14_Arcana", "many")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := run(t, newFakeClient(), "trait", "TFT14_Arcana")
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, newFakeClient(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tftmeta version 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}
