package reconcile

import (
	"slices"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// Merger combines the Data Dragon and Community Dragon variants of one
// record according to an Authorities table.
type Merger struct {
	authorities Authorities
	assetSource catalogs.ProviderID
}

// NewMerger creates a merger. assetSource is the provider whose icons win
// under AssetSourceWins.
func NewMerger(authorities Authorities, assetSource catalogs.ProviderID) *Merger {
	if authorities == nil {
		authorities = DefaultAuthorities()
	}
	if assetSource == "" {
		assetSource = catalogs.ProviderDDragon
	}
	return &Merger{authorities: authorities, assetSource: assetSource}
}

// presence describes what each provider supplied for one field.
type presence struct {
	aSet, bSet         bool // value supplied at all
	aNonZero, bNonZero bool // value supplied and not the zero value
}

// choose returns the winning provider for a field, or "" when neither
// provider supplied a value.
func (m *Merger) choose(rule Rule, p presence) catalogs.ProviderID {
	set := func(id catalogs.ProviderID) bool {
		if id == catalogs.ProviderDDragon {
			return p.aSet
		}
		return p.bSet
	}
	first := func(order ...catalogs.ProviderID) catalogs.ProviderID {
		for _, id := range order {
			if set(id) {
				return id
			}
		}
		return ""
	}

	switch rule {
	case BWins:
		return first(catalogs.ProviderCDragon, catalogs.ProviderDDragon)
	case PreferNonNull:
		switch {
		case p.aNonZero:
			return catalogs.ProviderDDragon
		case p.bNonZero:
			return catalogs.ProviderCDragon
		}
		return first(catalogs.ProviderDDragon, catalogs.ProviderCDragon)
	case AssetSourceWins:
		return first(m.assetSource, m.assetSource.Other())
	default:
		return first(catalogs.ProviderDDragon, catalogs.ProviderCDragon)
	}
}

// Merge returns a new record combining a (Data Dragon) and b (Community
// Dragon). Either may be nil, not both. Slices in the result are copies
// taken wholesale from the winning side, never concatenated.
func (m *Merger) Merge(a, b *catalogs.Record) catalogs.Record {
	if a == nil && b == nil {
		return catalogs.Record{}
	}
	var base catalogs.Record
	if a != nil {
		base = *a
	} else {
		base = *b
	}
	kind := base.Kind

	out := catalogs.Record{
		Kind:    kind,
		APIName: base.APIName,
	}
	if a != nil {
		out.FoundAtVersion = a.FoundAtVersion
		out.Sources = append(out.Sources, catalogs.ProviderDDragon)
	}
	if b != nil {
		out.Sources = append(out.Sources, catalogs.ProviderCDragon)
	}

	pick := func(field string, get func(r *catalogs.Record) string) (string, catalogs.ProviderID) {
		av, bv := strField(a, get), strField(b, get)
		winner := m.choose(m.authorities.Rule(kind, field), presence{
			aSet: av != "", bSet: bv != "", aNonZero: av != "", bNonZero: bv != "",
		})
		switch winner {
		case catalogs.ProviderDDragon:
			return av, winner
		case catalogs.ProviderCDragon:
			return bv, winner
		}
		return "", ""
	}

	out.DisplayName, _ = pick(FieldDisplayName, func(r *catalogs.Record) string { return r.DisplayName })
	out.Description, _ = pick(FieldDescription, func(r *catalogs.Record) string { return r.Description })
	out.Icon, out.IconSource = pick(FieldIcon, func(r *catalogs.Record) string { return r.Icon })
	out.TileIcon, out.TileSource = pick(FieldTileIcon, func(r *catalogs.Record) string { return r.TileIcon })

	switch kind {
	case catalogs.KindUnit:
		out.Unit = m.mergeUnit(unitOf(a), unitOf(b))
	case catalogs.KindItem:
		out.Item = m.mergeItem(itemOf(a), itemOf(b))
	case catalogs.KindTrait:
		out.Trait = m.mergeTrait(traitOf(a), traitOf(b))
	}
	return out
}

func (m *Merger) mergeUnit(a, b *catalogs.UnitDetails) *catalogs.UnitDetails {
	out := &catalogs.UnitDetails{}

	var aCost, bCost *int
	if a != nil {
		aCost = a.Cost
	}
	if b != nil {
		bCost = b.Cost
	}
	switch m.choose(m.authorities.Rule(catalogs.KindUnit, FieldCost), presence{
		aSet: aCost != nil, bSet: bCost != nil,
		aNonZero: aCost != nil && *aCost != 0, bNonZero: bCost != nil && *bCost != 0,
	}) {
	case catalogs.ProviderDDragon:
		out.Cost = copyInt(aCost)
	case catalogs.ProviderCDragon:
		out.Cost = copyInt(bCost)
	}

	var aTraits, bTraits []string
	if a != nil {
		aTraits = a.Traits
	}
	if b != nil {
		bTraits = b.Traits
	}
	out.Traits = pickSlice(m, catalogs.KindUnit, FieldTraits, aTraits, bTraits)
	return out
}

func (m *Merger) mergeItem(a, b *catalogs.ItemDetails) *catalogs.ItemDetails {
	out := &catalogs.ItemDetails{}

	var aComp, bComp []string
	var aUnique, bUnique bool
	if a != nil {
		aComp, aUnique = a.Composition, a.Unique
	}
	if b != nil {
		bComp, bUnique = b.Composition, b.Unique
	}
	out.Composition = pickSlice(m, catalogs.KindItem, FieldComposition, aComp, bComp)

	switch m.choose(m.authorities.Rule(catalogs.KindItem, FieldUnique), presence{
		aSet: a != nil, bSet: b != nil, aNonZero: aUnique, bNonZero: bUnique,
	}) {
	case catalogs.ProviderDDragon:
		out.Unique = aUnique
	case catalogs.ProviderCDragon:
		out.Unique = bUnique
	}
	return out
}

func (m *Merger) mergeTrait(a, b *catalogs.TraitDetails) *catalogs.TraitDetails {
	var aEff, bEff []catalogs.RawEffect
	if a != nil {
		aEff = a.RawEffects
	}
	if b != nil {
		bEff = b.RawEffects
	}
	return &catalogs.TraitDetails{
		RawEffects: pickSlice(m, catalogs.KindTrait, FieldEffects, aEff, bEff),
	}
}

// pickSlice selects a whole slice; an empty slice counts as absent.
func pickSlice[T any](m *Merger, kind catalogs.Kind, field string, a, b []T) []T {
	p := presence{aSet: len(a) > 0, bSet: len(b) > 0, aNonZero: len(a) > 0, bNonZero: len(b) > 0}
	switch m.choose(m.authorities.Rule(kind, field), p) {
	case catalogs.ProviderDDragon:
		return slices.Clone(a)
	case catalogs.ProviderCDragon:
		return slices.Clone(b)
	}
	return nil
}

func strField(r *catalogs.Record, get func(*catalogs.Record) string) string {
	if r == nil {
		return ""
	}
	return get(r)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func unitOf(r *catalogs.Record) *catalogs.UnitDetails {
	if r == nil {
		return nil
	}
	return r.Unit
}

func itemOf(r *catalogs.Record) *catalogs.ItemDetails {
	if r == nil {
		return nil
	}
	return r.Item
}

func traitOf(r *catalogs.Record) *catalogs.TraitDetails {
	if r == nil {
		return nil
	}
	return r.Trait
}
