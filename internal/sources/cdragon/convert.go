package cdragon

import (
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// document is latest/cdragon/tft/{locale}.json.
type document struct {
	Items   []itemEntry `json:"items"`
	SetData []setEntry  `json:"setData"`
}

type setEntry struct {
	Number    int             `json:"number"`
	Mutator   string          `json:"mutator"`
	Name      string          `json:"name"`
	Champions []championEntry `json:"champions"`
	Traits    []traitEntry    `json:"traits"`
}

type championEntry struct {
	APIName    string   `json:"apiName"`
	Name       string   `json:"name"`
	Cost       *int     `json:"cost"`
	Icon       string   `json:"icon"`
	SquareIcon string   `json:"squareIcon"`
	TileIcon   string   `json:"tileIcon"`
	Traits     []string `json:"traits"`
}

type traitEntry struct {
	APIName string        `json:"apiName"`
	Name    string        `json:"name"`
	Desc    string        `json:"desc"`
	Icon    string        `json:"icon"`
	Effects []effectEntry `json:"effects"`
}

type effectEntry struct {
	MinUnits int `json:"minUnits"`
	MaxUnits int `json:"maxUnits"`
	Style    int `json:"style"`
}

type itemEntry struct {
	APIName     string   `json:"apiName"`
	Name        string   `json:"name"`
	Desc        string   `json:"desc"`
	Icon        string   `json:"icon"`
	Composition []string `json:"composition"`
	Unique      bool     `json:"unique"`
}

// isAugment reports whether an item entry is an augment.
func isAugment(apiName string) bool {
	return strings.Contains(apiName, "Augment")
}

// selectSet picks the set roster for set: the entry whose mutator is
// exactly TFTSet{set}, else the first entry with that number, else the
// highest-numbered set chosen the same way.
func selectSet(sets []setEntry, set string) *setEntry {
	if len(sets) == 0 {
		return nil
	}
	if n, err := strconv.Atoi(set); err == nil {
		var byNumber *setEntry
		for i := range sets {
			if sets[i].Mutator == "TFTSet"+set {
				return &sets[i]
			}
			if sets[i].Number == n && byNumber == nil {
				byNumber = &sets[i]
			}
		}
		if byNumber != nil {
			return byNumber
		}
	}

	highest := sets[0].Number
	for _, s := range sets {
		highest = max(highest, s.Number)
	}
	for i := range sets {
		if sets[i].Mutator == "TFTSet"+strconv.Itoa(highest) {
			return &sets[i]
		}
	}
	for i := range sets {
		if sets[i].Number == highest {
			return &sets[i]
		}
	}
	return &sets[0]
}

// wellFormed reports whether an entry can become a record.
func wellFormed(apiName, name string) bool {
	return catalogs.NormalizeAPIName(apiName) != "" && strings.TrimSpace(name) != ""
}

func convertChampions(set *setEntry) []catalogs.Record {
	// Champion traits are published as display names.
	traitIDs := make(map[string]string, len(set.Traits))
	for _, t := range set.Traits {
		traitIDs[t.Name] = t.APIName
	}

	records := make([]catalogs.Record, 0, len(set.Champions))
	for _, c := range set.Champions {
		if !wellFormed(c.APIName, c.Name) {
			continue
		}
		traits := make([]string, 0, len(c.Traits))
		for _, name := range c.Traits {
			if id, ok := traitIDs[name]; ok && id != "" {
				traits = append(traits, id)
			} else {
				traits = append(traits, name)
			}
		}

		icon := c.SquareIcon
		if icon == "" {
			icon = c.Icon
		}
		rec := newRecord(catalogs.KindUnit, c.APIName, c.Name, "", icon)
		if c.TileIcon != "" {
			rec.TileIcon = c.TileIcon
			rec.TileSource = catalogs.ProviderCDragon
		}
		rec.Unit = &catalogs.UnitDetails{Cost: c.Cost, Traits: traits}
		records = append(records, rec)
	}
	return records
}

func convertTraits(set *setEntry) []catalogs.Record {
	records := make([]catalogs.Record, 0, len(set.Traits))
	for _, t := range set.Traits {
		if !wellFormed(t.APIName, t.Name) {
			continue
		}
		effects := make([]catalogs.RawEffect, 0, len(t.Effects))
		for _, e := range t.Effects {
			effects = append(effects, catalogs.RawEffect{MinUnits: e.MinUnits, MaxUnits: e.MaxUnits, Style: e.Style})
		}
		rec := newRecord(catalogs.KindTrait, t.APIName, t.Name, t.Desc, t.Icon)
		rec.Trait = &catalogs.TraitDetails{RawEffects: effects}
		records = append(records, rec)
	}
	return records
}

func convertItems(items []itemEntry, augments bool) []catalogs.Record {
	kind := catalogs.KindItem
	if augments {
		kind = catalogs.KindAugment
	}

	var records []catalogs.Record
	for _, it := range items {
		if isAugment(it.APIName) != augments || !wellFormed(it.APIName, it.Name) {
			continue
		}
		rec := newRecord(kind, it.APIName, it.Name, it.Desc, it.Icon)
		if !augments {
			rec.Item = &catalogs.ItemDetails{Composition: slices.Clone(it.Composition), Unique: it.Unique}
		}
		records = append(records, rec)
	}
	return records
}

func newRecord(kind catalogs.Kind, apiName, name, desc, icon string) catalogs.Record {
	rec := catalogs.Record{
		Kind:        kind,
		APIName:     strings.TrimSpace(apiName),
		DisplayName: name,
		Description: desc,
		Icon:        icon,
		Sources:     []catalogs.ProviderID{catalogs.ProviderCDragon},
	}
	if icon != "" {
		rec.IconSource = catalogs.ProviderCDragon
	}
	return rec
}
