package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/thresholds"
	"github.com/agentstation/tftmeta/pkg/versions"
)

func testSnapshot() *catalogs.Snapshot {
	idx := catalogs.NewNameIndex()
	idx.Add("TFT14_Ahri", "Ahri")
	return &catalogs.Snapshot{
		Version:     "14.2.1",
		CurrentSet:  "14",
		AssetSource: "A",
		BuiltAt:     utc.New(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)),
		Units: []catalogs.Record{{
			Kind: catalogs.KindUnit, APIName: "TFT14_Ahri", DisplayName: "Ahri",
			Unit: &catalogs.UnitDetails{Traits: []string{"TFT14_Arcana"}},
		}},
		NameIndex: idx,
		Stats: catalogs.BuildStats{PerKind: map[catalogs.Kind]catalogs.KindStats{
			catalogs.KindUnit: {FromA: 1, FromB: 1, Merged: 1},
			catalogs.KindItem: {Errors: []string{"ddragon unavailable"}},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"table", FormatTable, false},
		{"summary", FormatTable, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, testSnapshot()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "14.2.1", decoded["version"])
	assert.Contains(t, buf.String(), `"api_name": "TFT14_Ahri"`)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, testSnapshot()))
	out := buf.String()
	assert.Contains(t, out, "version: 14.2.1")
	assert.Contains(t, out, "api_name: TFT14_Ahri")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, SnapshotTables(testSnapshot())))
	out := buf.String()
	assert.Contains(t, out, "14.2.1")
	assert.Contains(t, out, "2026-05-01T08:00:00Z")
	assert.Contains(t, out, "ddragon unavailable")

	t.Run("falls back to JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"units": 1}))
		assert.JSONEq(t, `{"units": 1}`, buf.String())
	})
}

func TestSnapshotTables(t *testing.T) {
	tables := SnapshotTables(testSnapshot())
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"Version", "14.2.1"}, tables[0].Rows[0])
	assert.Equal(t, []string{"Names Indexed", "1"}, tables[0].Rows[4])

	require.Len(t, tables[1].Rows, len(catalogs.Kinds()))
	assert.Equal(t, []string{"unit", "1", "1", "1", "1", "0", "0", "-"}, tables[1].Rows[0])
	assert.Equal(t, "ddragon unavailable", tables[1].Rows[1][7])

	snap := testSnapshot()
	snap.VersionFallback = true
	assert.Equal(t, "14.2.1 (last known good)", SnapshotTables(snap)[0].Rows[0][1])
}

func TestVersionsTable(t *testing.T) {
	res := versions.Resolution{Version: "14.2.1", Versions: []string{"15.1.1", "14.2.1", "14.1.1"}}

	data := VersionsTable(res, 0)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"14.2.1", "14", "*"}, data.Rows[1])
	assert.Equal(t, "", data.Rows[0][2])

	assert.Len(t, VersionsTable(res, 2).Rows, 2)
}

func TestTraitTable(t *testing.T) {
	effects := thresholds.Build([]catalogs.RawEffect{{MinUnits: 2, Style: 1}, {MinUnits: 4, Style: 3}})

	data := TraitTable(effects, thresholds.Active(5, effects))
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"2", "bronze", ""}, data.Rows[0])
	assert.Equal(t, []string{"4", "gold", "*"}, data.Rows[1])

	assert.Empty(t, TraitTable(nil, thresholds.Inactive()).Rows)
}
