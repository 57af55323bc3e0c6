package catalogs

import (
	"encoding/json"
	"slices"
)

// NameIndex is an ordered apiName to displayName mapping spanning all kinds.
// Lookups are normalized, so a name is registered at most once; the first
// registration wins. Iteration follows insertion order.
type NameIndex struct {
	keys  []string          // apiNames in insertion order
	names map[string]string // normalized apiName -> displayName
}

// NamePair is the serialized form of one NameIndex entry.
type NamePair struct {
	APIName     string `json:"api_name" yaml:"api_name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// NewNameIndex creates an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{
		names: make(map[string]string),
	}
}

// Add registers apiName. It returns false, leaving the index unchanged,
// when the normalized name is already present.
func (n *NameIndex) Add(apiName, displayName string) bool {
	key := NormalizeAPIName(apiName)
	if key == "" {
		return false
	}
	if _, exists := n.names[key]; exists {
		return false
	}
	n.keys = append(n.keys, apiName)
	n.names[key] = displayName
	return true
}

// Get returns the display name registered for apiName.
func (n *NameIndex) Get(apiName string) (string, bool) {
	if n == nil {
		return "", false
	}
	name, ok := n.names[NormalizeAPIName(apiName)]
	return name, ok
}

// Keys returns the registered apiNames in insertion order.
func (n *NameIndex) Keys() []string {
	if n == nil {
		return nil
	}
	return slices.Clone(n.keys)
}

// Len returns the number of entries.
func (n *NameIndex) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (n *NameIndex) Range(fn func(apiName, displayName string) bool) {
	if n == nil {
		return
	}
	for _, apiName := range n.keys {
		if !fn(apiName, n.names[NormalizeAPIName(apiName)]) {
			return
		}
	}
}

// Pairs flattens the index into an ordered pair list for serialization.
func (n *NameIndex) Pairs() []NamePair {
	pairs := make([]NamePair, 0, n.Len())
	n.Range(func(apiName, displayName string) bool {
		pairs = append(pairs, NamePair{APIName: apiName, DisplayName: displayName})
		return true
	})
	return pairs
}

// MarshalJSON encodes the index as an ordered pair list.
func (n *NameIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Pairs())
}

// UnmarshalJSON decodes an ordered pair list.
func (n *NameIndex) UnmarshalJSON(data []byte) error {
	var pairs []NamePair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	*n = *NewNameIndex()
	for _, p := range pairs {
		n.Add(p.APIName, p.DisplayName)
	}
	return nil
}

// MarshalYAML encodes the index as an ordered pair list.
func (n *NameIndex) MarshalYAML() (any, error) {
	return n.Pairs(), nil
}
