// Package assets turns provider-native image references into absolute URLs.
//
// Data Dragon references are rooted under a per-version image path and
// Community Dragon references under its always-latest game path. Texture
// formats are rewritten to PNG, which both CDNs serve.
package assets

import (
	"net/url"
	"path"
	"strings"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
)

// RasterExt replaces texture extensions.
const RasterExt = ".png"

var textureExts = map[string]bool{
	".tex": true,
	".dds": true,
}

// Canonicalizer builds absolute URLs for one resolved version.
type Canonicalizer struct {
	version     string
	ddragonBase string
	cdragonBase string
	lowercase   bool
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithDDragonBase overrides the Data Dragon base URL.
func WithDDragonBase(base string) Option {
	return func(c *Canonicalizer) {
		c.ddragonBase = strings.TrimRight(base, "/")
	}
}

// WithCDragonBase overrides the Community Dragon base URL.
func WithCDragonBase(base string) Option {
	return func(c *Canonicalizer) {
		c.cdragonBase = strings.TrimRight(base, "/")
	}
}

// WithLowercasePaths lowercases Community Dragon paths, matching how the
// public CDN stores game files.
func WithLowercasePaths(enabled bool) Option {
	return func(c *Canonicalizer) {
		c.lowercase = enabled
	}
}

// New creates a Canonicalizer for the given Data Dragon version.
func New(version string, opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		version:     version,
		ddragonBase: constants.DDragonURL,
		cdragonBase: constants.CDragonURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefix returns the URL prefix under which provider references are rooted.
func (c *Canonicalizer) Prefix(provider catalogs.ProviderID) string {
	if provider == catalogs.ProviderCDragon {
		return c.cdragonBase + "/latest/game/"
	}
	return c.ddragonBase + "/cdn/" + c.version + "/img/"
}

// Canonicalize returns the absolute URL for ref. An empty ref yields ""
// with no error; a reference that cannot form a valid URL yields a
// MalformedReferenceError.
func (c *Canonicalizer) Canonicalize(ref string, provider catalogs.ProviderID) (string, error) {
	if ref == "" {
		return "", nil
	}
	if err := checkReference(ref); err != nil {
		return "", err
	}

	if isAbsolute(ref) {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return "", errors.NewMalformedReferenceError(ref, "unparseable URL")
		}
		u.Path = rasterize(u.Path)
		return u.String(), nil
	}

	rel := rasterize(strings.TrimLeft(ref, "/"))
	if provider == catalogs.ProviderCDragon && c.lowercase {
		rel = strings.ToLower(rel)
	}
	return c.Prefix(provider) + rel, nil
}

// Tile returns the compact tile URL. A dedicated tile reference wins;
// otherwise the suffix is inserted before the extension of icon's URL.
func (c *Canonicalizer) Tile(iconRef string, provider catalogs.ProviderID, tileRef string, tileProvider catalogs.ProviderID) (string, error) {
	if tileRef != "" {
		return c.Canonicalize(tileRef, tileProvider)
	}
	icon, err := c.Canonicalize(iconRef, provider)
	if err != nil || icon == "" {
		return "", err
	}
	return TileURL(icon), nil
}

// Relative strips the canonical prefix from an absolute URL produced by
// Canonicalize, returning the provider-relative path.
func (c *Canonicalizer) Relative(absolute string, provider catalogs.ProviderID) (string, bool) {
	return strings.CutPrefix(absolute, c.Prefix(provider))
}

// Derived paths under the Community Dragon latest tree, used when no
// provider supplied an icon at all.
const (
	derivedUnitPath  = "/latest/plugins/rcp-be-lol-game-data/global/default/v1/champion-icons/"
	derivedTraitPath = "/latest/game/assets/ux/tft/traits/"
	derivedItemPath  = "/latest/game/assets/maps/tft/icons/hexcore/"
)

// Derived synthesizes a Community Dragon icon URL from apiName. It returns
// "" when apiName is not a plain identifier or the kind has no derived path.
func (c *Canonicalizer) Derived(kind catalogs.Kind, apiName string) string {
	if !plainIdentifier(apiName) {
		return ""
	}
	var dir string
	switch kind {
	case catalogs.KindUnit:
		dir = derivedUnitPath
	case catalogs.KindTrait:
		dir = derivedTraitPath
	case catalogs.KindItem, catalogs.KindAugment:
		dir = derivedItemPath
	default:
		return ""
	}
	return c.cdragonBase + dir + strings.ToLower(apiName) + RasterExt
}

func plainIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// TileURL inserts the tile suffix before the extension of u.
func TileURL(u string) string {
	slash := strings.LastIndexByte(u, '/')
	dot := strings.LastIndexByte(u, '.')
	if dot <= slash {
		return u + constants.TileSuffix
	}
	return u[:dot] + constants.TileSuffix + u[dot:]
}

// checkReference rejects references that would produce a dangling or
// ambiguous URL.
func checkReference(ref string) error {
	switch {
	case strings.ContainsAny(ref, " \t\r\n"):
		return errors.NewMalformedReferenceError(ref, "contains whitespace")
	case strings.Contains(ref, `\`):
		return errors.NewMalformedReferenceError(ref, "contains backslash")
	case strings.Contains(ref, ".."):
		return errors.NewMalformedReferenceError(ref, "contains parent traversal")
	}

	p := ref
	if isAbsolute(ref) {
		if u, err := url.Parse(ref); err == nil {
			p = u.Path
		}
	}
	if path.Ext(p) == "" {
		return errors.NewMalformedReferenceError(ref, "missing file extension")
	}
	return nil
}

func isAbsolute(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// rasterize rewrites a texture extension to RasterExt.
func rasterize(p string) string {
	ext := path.Ext(p)
	if textureExts[strings.ToLower(ext)] {
		return strings.TrimSuffix(p, ext) + RasterExt
	}
	return p
}
