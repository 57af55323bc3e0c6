package catalogs

import (
	"strings"

	"github.com/agentstation/tftmeta/pkg/errors"
)

// Kind identifies one catalog collection.
type Kind string

// Catalog kinds.
const (
	KindUnit    Kind = "unit"
	KindItem    Kind = "item"
	KindTrait   Kind = "trait"
	KindAugment Kind = "augment"
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindUnit, KindItem, KindTrait, KindAugment:
		return true
	}
	return false
}

// Kinds returns every kind in snapshot order.
func Kinds() []Kind {
	return []Kind{KindUnit, KindItem, KindTrait, KindAugment}
}

// RequiredKinds returns the kinds that must be non-empty for a snapshot to be served.
func RequiredKinds() []Kind {
	return []Kind{KindUnit, KindItem, KindTrait}
}

// ParseKind parses a kind name, accepting plurals ("units").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if !k.IsValid() {
		return "", errors.NewValidationError("kind", s, "must be one of unit, item, trait, augment")
	}
	return k, nil
}

// ProviderID identifies a catalog provider.
type ProviderID string

// Catalog providers.
const (
	// ProviderDDragon is Data Dragon: versioned and locale-aware.
	ProviderDDragon ProviderID = "ddragon"
	// ProviderCDragon is Community Dragon: a single always-current catalog.
	ProviderCDragon ProviderID = "cdragon"
)

// String returns the string representation of a provider ID.
func (p ProviderID) String() string {
	return string(p)
}

// Asset source selectors accepted by resolve.
const (
	AssetSourceA = "A"
	AssetSourceB = "B"
)

// ProviderForAssetSource maps an asset source selector to its provider.
// An empty selector means A.
func ProviderForAssetSource(source string) (ProviderID, error) {
	switch strings.ToUpper(strings.TrimSpace(source)) {
	case "", AssetSourceA:
		return ProviderDDragon, nil
	case AssetSourceB:
		return ProviderCDragon, nil
	}
	return "", errors.NewValidationError("asset_source", source, `must be "A" or "B"`)
}

// Other returns the opposite provider.
func (p ProviderID) Other() ProviderID {
	if p == ProviderDDragon {
		return ProviderCDragon
	}
	return ProviderDDragon
}
