package catalogs

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameIndex(t *testing.T) {
	idx := NewNameIndex()
	assert.True(t, idx.Add("TFT14_Ahri", "Ahri"))
	assert.True(t, idx.Add("TFT_Item_BFSword", "B.F. Sword"))
	assert.False(t, idx.Add("tft14_ahri", "Ahri (dup)"), "first registration wins")
	assert.False(t, idx.Add("", "nothing"))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"TFT14_Ahri", "TFT_Item_BFSword"}, idx.Keys())

	name, ok := idx.Get("Characters/TFT14_AHRI")
	require.True(t, ok)
	assert.Equal(t, "Ahri", name)

	_, ok = idx.Get("TFT14_Yasuo")
	assert.False(t, ok)
}

func TestNameIndexRangeStops(t *testing.T) {
	idx := NewNameIndex()
	idx.Add("a", "A")
	idx.Add("b", "B")
	idx.Add("c", "C")

	var seen []string
	idx.Range(func(apiName, _ string) bool {
		seen = append(seen, apiName)
		return apiName != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestNameIndexNil(t *testing.T) {
	var idx *NameIndex
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Keys())
	assert.Empty(t, idx.Pairs())
	_, ok := idx.Get("x")
	assert.False(t, ok)
}

func TestNameIndexSerialization(t *testing.T) {
	idx := NewNameIndex()
	idx.Add("TFT14_Ahri", "Ahri")
	idx.Add("TFT14_Arcana", "Arcana")

	data, err := json.Marshal(idx)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"api_name":"TFT14_Ahri","display_name":"Ahri"},{"api_name":"TFT14_Arcana","display_name":"Arcana"}]`,
		string(data))

	decoded := NewNameIndex()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, idx.Keys(), decoded.Keys())

	out, err := yaml.Marshal(map[string]any{"names": idx})
	require.NoError(t, err)
	assert.Contains(t, string(out), "api_name: TFT14_Ahri")
	assert.Contains(t, string(out), "display_name: Arcana")
}
