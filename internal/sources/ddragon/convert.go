package ddragon

import (
	"path"
	"sort"
	"strings"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// catalogFile is one tft-*.json document.
type catalogFile struct {
	Type    string                `json:"type"`
	Version string                `json:"version"`
	Data    map[string]dataRecord `json:"data"`
}

type dataRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Tier        *int          `json:"tier"`
	Cost        *int          `json:"cost"`
	From        []string      `json:"from"`
	Composition []string      `json:"composition"`
	Traits      []string      `json:"traits"`
	Unique      bool          `json:"unique"`
	Effects     []effectEntry `json:"effects"`
	Image       image         `json:"image"`
}

type effectEntry struct {
	MinUnits int `json:"minUnits"`
	MaxUnits int `json:"maxUnits"`
	Style    int `json:"style"`
}

type image struct {
	Full  string `json:"full"`
	Group string `json:"group"`
}

// convertCatalog converts a catalog document into records ordered by
// data key, so duplicate detection downstream is deterministic.
func convertCatalog(kind catalogs.Kind, doc *catalogFile) []catalogs.Record {
	keys := make([]string, 0, len(doc.Data))
	for k := range doc.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]catalogs.Record, 0, len(keys))
	for _, k := range keys {
		if rec, ok := convertRecord(kind, k, doc.Data[k]); ok {
			records = append(records, rec)
		}
	}
	return records
}

func convertRecord(kind catalogs.Kind, key string, d dataRecord) (catalogs.Record, bool) {
	apiName := strings.TrimSpace(d.ID)
	if apiName == "" {
		apiName = path.Base(key)
	}
	if catalogs.NormalizeAPIName(apiName) == "" {
		return catalogs.Record{}, false
	}

	rec := catalogs.Record{
		Kind:        kind,
		APIName:     apiName,
		DisplayName: d.Name,
		Description: d.Description,
		Icon:        iconRef(d.Image),
		Sources:     []catalogs.ProviderID{catalogs.ProviderDDragon},
	}
	if rec.Icon != "" {
		rec.IconSource = catalogs.ProviderDDragon
	}

	switch kind {
	case catalogs.KindUnit:
		cost := d.Tier
		if cost == nil {
			cost = d.Cost
		}
		rec.Unit = &catalogs.UnitDetails{Cost: cost, Traits: d.Traits}
	case catalogs.KindItem:
		composition := d.Composition
		if len(composition) == 0 {
			composition = d.From
		}
		rec.Item = &catalogs.ItemDetails{Composition: composition, Unique: d.Unique}
	case catalogs.KindTrait:
		effects := make([]catalogs.RawEffect, 0, len(d.Effects))
		for _, e := range d.Effects {
			effects = append(effects, catalogs.RawEffect{MinUnits: e.MinUnits, MaxUnits: e.MaxUnits, Style: e.Style})
		}
		rec.Trait = &catalogs.TraitDetails{RawEffects: effects}
	}
	return rec, true
}

// iconRef joins the image group and file name, e.g.
// "tft-champion/TFT14_Ahri.TFT_Set14.png".
func iconRef(img image) string {
	if img.Full == "" {
		return ""
	}
	if img.Group == "" {
		return img.Full
	}
	return img.Group + "/" + img.Full
}
