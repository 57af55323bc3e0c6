package catalogs

import (
	"fmt"
	"slices"

	"github.com/agentstation/tftmeta/pkg/errors"
)

// Record is one catalog entry of any kind. It is a tagged variant:
// exactly the detail pointer matching Kind is set, and augments carry none.
//
// Icon and TileIcon hold the provider-native reference until the snapshot
// is built, and an absolute URL (or "" for an explicit null) afterwards.
type Record struct {
	Kind        Kind   `json:"kind" yaml:"kind"`
	APIName     string `json:"api_name" yaml:"api_name"`                           // Stable cross-provider identifier
	DisplayName string `json:"display_name" yaml:"display_name"`                   // Localized name
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Localized description

	Icon       string     `json:"icon" yaml:"icon"`
	IconSource ProviderID `json:"icon_source,omitempty" yaml:"icon_source,omitempty"`
	TileIcon   string     `json:"tile_icon" yaml:"tile_icon"`
	TileSource ProviderID `json:"tile_source,omitempty" yaml:"tile_source,omitempty"`

	// FoundAtVersion is set when the record was recovered from an older version.
	FoundAtVersion string `json:"found_at_version,omitempty" yaml:"found_at_version,omitempty"`

	// Sources lists the providers that contributed to this record.
	Sources []ProviderID `json:"sources,omitempty" yaml:"sources,omitempty"`

	Unit  *UnitDetails  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Item  *ItemDetails  `json:"item,omitempty" yaml:"item,omitempty"`
	Trait *TraitDetails `json:"trait,omitempty" yaml:"trait,omitempty"`
}

// UnitDetails holds unit-only fields.
type UnitDetails struct {
	Cost   *int     `json:"cost,omitempty" yaml:"cost,omitempty"`
	Traits []string `json:"traits,omitempty" yaml:"traits,omitempty"`
}

// ItemDetails holds item-only fields.
type ItemDetails struct {
	Composition []string `json:"composition,omitempty" yaml:"composition,omitempty"` // Component apiNames
	Unique      bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// TraitDetails holds trait-only fields.
type TraitDetails struct {
	RawEffects []RawEffect `json:"raw_effects,omitempty" yaml:"raw_effects,omitempty"`
}

// RawEffect is a trait effect exactly as a provider publishes it.
type RawEffect struct {
	MinUnits int `json:"min_units" yaml:"min_units"`
	MaxUnits int `json:"max_units" yaml:"max_units"`
	Style    int `json:"style" yaml:"style"`
}

// Key returns the normalized apiName used to join records across providers.
func (r *Record) Key() string {
	return NormalizeAPIName(r.APIName)
}

// Validate checks identity and the variant tag.
func (r *Record) Validate() error {
	if !r.Kind.IsValid() {
		return errors.NewValidationError("kind", r.Kind, "unknown kind")
	}
	if r.Key() == "" {
		return errors.NewValidationError("api_name", r.APIName, "must not be empty")
	}

	want := map[Kind]bool{
		KindUnit:  r.Unit != nil,
		KindItem:  r.Item != nil,
		KindTrait: r.Trait != nil,
	}
	for kind, set := range want {
		if set && kind != r.Kind {
			return errors.NewValidationError(string(kind), r.APIName,
				fmt.Sprintf("%s details set on a %s record", kind, r.Kind))
		}
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Sources = slices.Clone(r.Sources)
	if r.Unit != nil {
		u := *r.Unit
		if r.Unit.Cost != nil {
			cost := *r.Unit.Cost
			u.Cost = &cost
		}
		u.Traits = slices.Clone(r.Unit.Traits)
		out.Unit = &u
	}
	if r.Item != nil {
		it := *r.Item
		it.Composition = slices.Clone(r.Item.Composition)
		out.Item = &it
	}
	if r.Trait != nil {
		tr := *r.Trait
		tr.RawEffects = slices.Clone(r.Trait.RawEffects)
		out.Trait = &tr
	}
	return out
}
