package catalogs

import (
	"slices"
	"strings"

	"github.com/agentstation/utc"
)

// Snapshot is one complete, reconciled catalog spanning all kinds.
// It is immutable once built; a refresh builds a new Snapshot.
type Snapshot struct {
	Version         string   `json:"version" yaml:"version"`                   // Resolved Data Dragon version
	VersionFallback bool     `json:"version_fallback" yaml:"version_fallback"` // Version index was unreachable
	CurrentSet      string   `json:"current_set" yaml:"current_set"`           // Set epoch used for prefix matching
	AssetSource     string   `json:"asset_source" yaml:"asset_source"`         // "A" or "B"
	BuiltAt         utc.Time `json:"built_at" yaml:"built_at"`

	Units    []Record `json:"units" yaml:"units"`
	Items    []Record `json:"items" yaml:"items"`
	Traits   []Record `json:"traits" yaml:"traits"`
	Augments []Record `json:"augments" yaml:"augments"`

	// TraitThresholds maps a trait apiName to its sorted breakpoints.
	TraitThresholds map[string][]TraitEffect `json:"trait_thresholds" yaml:"trait_thresholds"`
	NameIndex       *NameIndex               `json:"name_index" yaml:"name_index"`

	Stats BuildStats `json:"stats" yaml:"stats"`
}

// BuildStats summarizes how a snapshot was assembled.
type BuildStats struct {
	PerKind   map[Kind]KindStats `json:"per_kind" yaml:"per_kind"`
	Recovered int                `json:"recovered" yaml:"recovered"` // Records found by fallback search
	Dropped   int                `json:"dropped" yaml:"dropped"`     // Records that could not be found anywhere
}

// KindStats summarizes one kind.
type KindStats struct {
	FromA     int      `json:"from_a" yaml:"from_a"`
	FromB     int      `json:"from_b" yaml:"from_b"`
	Merged    int      `json:"merged" yaml:"merged"`
	Recovered int      `json:"recovered" yaml:"recovered"`
	Dropped   int      `json:"dropped" yaml:"dropped"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Records returns the collection for kind.
func (s *Snapshot) Records(kind Kind) []Record {
	switch kind {
	case KindUnit:
		return s.Units
	case KindItem:
		return s.Items
	case KindTrait:
		return s.Traits
	case KindAugment:
		return s.Augments
	}
	return nil
}

// SetRecords replaces the collection for kind. It is meant for builders;
// a published snapshot must not be mutated.
func (s *Snapshot) SetRecords(kind Kind, records []Record) {
	switch kind {
	case KindUnit:
		s.Units = records
	case KindItem:
		s.Items = records
	case KindTrait:
		s.Traits = records
	case KindAugment:
		s.Augments = records
	}
}

// Count returns the number of records of kind.
func (s *Snapshot) Count(kind Kind) int {
	return len(s.Records(kind))
}

// Find looks a record up by normalized apiName.
func (s *Snapshot) Find(kind Kind, apiName string) (*Record, bool) {
	key := NormalizeAPIName(apiName)
	records := s.Records(kind)
	i, found := slices.BinarySearchFunc(records, key, func(r Record, k string) int {
		return strings.Compare(r.Key(), k)
	})
	if !found {
		return nil, false
	}
	return &records[i], true
}

// Trait looks a trait up by apiName.
func (s *Snapshot) Trait(apiName string) (*Record, bool) {
	return s.Find(KindTrait, apiName)
}

// Thresholds returns the breakpoints for a trait.
func (s *Snapshot) Thresholds(apiName string) ([]TraitEffect, bool) {
	if effects, ok := s.TraitThresholds[apiName]; ok {
		return effects, true
	}
	trait, ok := s.Trait(apiName)
	if !ok {
		return nil, false
	}
	effects, ok := s.TraitThresholds[trait.APIName]
	return effects, ok
}

// SortRecords orders records by normalized apiName, the order Find relies on.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return strings.Compare(a.Key(), b.Key())
	})
}
