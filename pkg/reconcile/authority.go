package reconcile

import (
	"path"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// Rule decides which provider's value a merged field takes.
type Rule string

// Merge rules.
const (
	// AWins takes Data Dragon's value when it supplies one, else Community Dragon's.
	AWins Rule = "a_wins"
	// BWins takes Community Dragon's value when it supplies one, else Data Dragon's.
	BWins Rule = "b_wins"
	// PreferNonNull takes the first non-zero value in A, B order; zero counts as absent.
	PreferNonNull Rule = "prefer_non_null"
	// AssetSourceWins takes the value of the provider selected as asset source.
	AssetSourceWins Rule = "asset_source_wins"
)

// Merged field paths.
const (
	FieldDisplayName = "display_name"
	FieldDescription = "description"
	FieldIcon        = "icon"
	FieldTileIcon    = "tile_icon"
	FieldCost        = "unit.cost"
	FieldTraits      = "unit.traits"
	FieldComposition = "item.composition"
	FieldUnique      = "item.unique"
	FieldEffects     = "trait.effects"
)

// FieldAuthority binds a field path pattern to a merge rule. Patterns
// support a trailing "*" and path.Match syntax.
type FieldAuthority struct {
	FieldPath string `json:"field_path" yaml:"field_path"`
	Rule      Rule   `json:"rule" yaml:"rule"`
}

// Authorities is the static precedence table, per kind.
type Authorities map[catalogs.Kind][]FieldAuthority

// commonAuthorities apply to every kind.
func commonAuthorities() []FieldAuthority {
	return []FieldAuthority{
		// Data Dragon is localized; prefer its text.
		{FieldPath: FieldDisplayName, Rule: AWins},
		{FieldPath: FieldDescription, Rule: AWins},

		// Icons follow the caller's asset source selection.
		{FieldPath: FieldIcon, Rule: AssetSourceWins},
		{FieldPath: FieldTileIcon, Rule: AssetSourceWins},
	}
}

// DefaultAuthorities returns the default precedence table.
func DefaultAuthorities() Authorities {
	withCommon := func(extra ...FieldAuthority) []FieldAuthority {
		return append(commonAuthorities(), extra...)
	}
	return Authorities{
		catalogs.KindUnit: withCommon(
			// Data Dragon sometimes publishes 0 for unreleased units.
			FieldAuthority{FieldPath: FieldCost, Rule: PreferNonNull},
			FieldAuthority{FieldPath: FieldTraits, Rule: AWins},
		),
		catalogs.KindItem: withCommon(
			FieldAuthority{FieldPath: FieldComposition, Rule: AWins},
			FieldAuthority{FieldPath: FieldUnique, Rule: PreferNonNull},
		),
		catalogs.KindTrait: withCommon(
			// Data Dragon rarely publishes effect styles.
			FieldAuthority{FieldPath: FieldEffects, Rule: BWins},
		),
		catalogs.KindAugment: withCommon(),
	}
}

// Rule returns the rule for a field of kind. The most specific matching
// pattern wins; fields with no authority default to AWins.
func (a Authorities) Rule(kind catalogs.Kind, fieldPath string) Rule {
	if auth := AuthorityByField(fieldPath, a[kind]); auth != nil {
		return auth.Rule
	}
	return AWins
}

// With returns a copy of the table with authority added for kind, taking
// precedence over existing entries for the same pattern.
func (a Authorities) With(kind catalogs.Kind, authority FieldAuthority) Authorities {
	out := make(Authorities, len(a))
	for k, list := range a {
		out[k] = append([]FieldAuthority(nil), list...)
	}
	out[kind] = append([]FieldAuthority{authority}, out[kind]...)
	return out
}

// AuthorityByField returns the most specific authority matching fieldPath.
// Among equally specific patterns the earliest entry wins.
func AuthorityByField(fieldPath string, authorities []FieldAuthority) *FieldAuthority {
	var best *FieldAuthority
	for i, auth := range authorities {
		if !MatchesPattern(fieldPath, auth.FieldPath) {
			continue
		}
		if best == nil || len(auth.FieldPath) > len(best.FieldPath) {
			best = &authorities[i]
		}
	}
	return best
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix := pattern[:n-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := path.Match(pattern, fieldPath)
	return err == nil && matched
}
