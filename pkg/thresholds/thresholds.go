// Package thresholds derives trait breakpoints from raw provider effects
// and answers which style a trait shows for a given unit count.
package thresholds

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// styleTable maps provider style ordinals to styles.
var styleTable = map[int]catalogs.Style{
	1: catalogs.StyleBronze,
	2: catalogs.StyleSilver,
	3: catalogs.StyleGold,
	4: catalogs.StyleChromatic,
	5: catalogs.StyleUnique,
}

// StyleForOrdinal maps a provider ordinal; unknown ordinals are inactive.
func StyleForOrdinal(ordinal int) catalogs.Style {
	if s, ok := styleTable[ordinal]; ok {
		return s
	}
	return catalogs.StyleInactive
}

// Rank returns the ordinal of a style, 0 for inactive or unknown.
func Rank(style catalogs.Style) int {
	for ordinal, s := range styleTable {
		if s == style {
			return ordinal
		}
	}
	return 0
}

// StyleFromName parses a style name case-insensitively.
func StyleFromName(name string) (catalogs.Style, bool) {
	style := catalogs.Style(strings.ToLower(strings.TrimSpace(name)))
	if style == catalogs.StyleInactive || Rank(style) > 0 {
		return style, true
	}
	return catalogs.StyleInactive, false
}

// Build converts raw effects into breakpoints sorted by MinUnitCount.
// Negative counts are dropped and effects sharing a count collapse to the
// highest style, so the result is strictly increasing.
func Build(raw []catalogs.RawEffect) []catalogs.TraitEffect {
	byCount := make(map[int]catalogs.Style, len(raw))
	for _, e := range raw {
		if e.MinUnits < 0 {
			continue
		}
		style := StyleForOrdinal(e.Style)
		if prev, ok := byCount[e.MinUnits]; ok && Rank(prev) >= Rank(style) {
			continue
		}
		byCount[e.MinUnits] = style
	}

	effects := make([]catalogs.TraitEffect, 0, len(byCount))
	for count, style := range byCount {
		effects = append(effects, catalogs.TraitEffect{MinUnitCount: count, Style: style})
	}
	slices.SortFunc(effects, func(a, b catalogs.TraitEffect) int {
		return cmp.Compare(a.MinUnitCount, b.MinUnitCount)
	})
	return effects
}

// Activation describes a trait at a given unit count.
type Activation struct {
	Style         catalogs.Style  `json:"style" yaml:"style"`
	MinUnitCount  int             `json:"min_unit_count" yaml:"min_unit_count"` // Breakpoint reached, 0 when inactive
	NextThreshold *int            `json:"next_threshold,omitempty" yaml:"next_threshold,omitempty"`
	NextStyle     *catalogs.Style `json:"next_style,omitempty" yaml:"next_style,omitempty"`
}

// Active reports the highest breakpoint reached by unitCount. Below the
// first breakpoint the result is inactive and points at that breakpoint.
// thresholds must be sorted as returned by Build.
func Active(unitCount int, thresholds []catalogs.TraitEffect) Activation {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if thresholds[i].MinUnitCount > unitCount {
			continue
		}
		a := Activation{Style: thresholds[i].Style, MinUnitCount: thresholds[i].MinUnitCount}
		if i+1 < len(thresholds) {
			a.setNext(thresholds[i+1])
		}
		return a
	}

	a := Inactive()
	if len(thresholds) > 0 {
		a.setNext(thresholds[0])
	}
	return a
}

// Inactive is the sentinel for a trait with nothing to activate.
func Inactive() Activation {
	return Activation{Style: catalogs.StyleInactive}
}

// IsActive reports whether a breakpoint was reached.
func (a Activation) IsActive() bool {
	return a.Style != catalogs.StyleInactive
}

func (a *Activation) setNext(next catalogs.TraitEffect) {
	count, style := next.MinUnitCount, next.Style
	a.NextThreshold = &count
	a.NextStyle = &style
}
