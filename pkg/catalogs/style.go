package catalogs

// Style is the visual tier of an active trait.
type Style string

// Trait styles, lowest to highest.
const (
	StyleInactive  Style = "inactive"
	StyleBronze    Style = "bronze"
	StyleSilver    Style = "silver"
	StyleGold      Style = "gold"
	StyleChromatic Style = "chromatic"
	StyleUnique    Style = "unique"
)

// String returns the string representation of a style.
func (s Style) String() string {
	return string(s)
}

// TraitEffect is a single breakpoint: at MinUnitCount units the trait shows Style.
type TraitEffect struct {
	MinUnitCount int   `json:"min_unit_count" yaml:"min_unit_count"`
	Style        Style `json:"style" yaml:"style"`
}
