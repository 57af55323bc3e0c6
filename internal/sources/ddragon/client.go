// Package ddragon implements the Data Dragon catalog: versioned and
// locale-aware, one JSON file per kind per release.
package ddragon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agentstation/tftmeta/internal/transport"
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
)

// dataFiles names the per-kind catalog file.
var dataFiles = map[catalogs.Kind]string{
	catalogs.KindUnit:    "tft-champion",
	catalogs.KindItem:    "tft-item",
	catalogs.KindTrait:   "tft-trait",
	catalogs.KindAugment: "tft-augments",
}

// Client is a Data Dragon client. Catalog files are fetched at most once
// concurrently per kind and version.
type Client struct {
	http   *transport.Client
	locale string
	group  singleflight.Group
}

type options struct {
	baseURL   string
	locale    string
	timeout   time.Duration
	retries   int
	userAgent string
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides the Data Dragon base URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithLocale sets the catalog locale, e.g. "en_US".
func WithLocale(locale string) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetries sets the HTTP retry count.
func WithRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithUserAgent overrides the HTTP User-Agent.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// New creates a Data Dragon client.
func New(opts ...Option) *Client {
	o := &options{
		baseURL: constants.DDragonURL,
		locale:  constants.DefaultLocale,
		timeout: constants.DefaultHTTPTimeout,
		retries: constants.DefaultRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		http: transport.New(catalogs.ProviderDDragon.String(), o.baseURL,
			transport.WithTimeout(o.timeout),
			transport.WithRetries(o.retries),
			transport.WithUserAgent(o.userAgent),
		),
		locale: o.locale,
	}
}

// ID returns the provider ID.
func (c *Client) ID() catalogs.ProviderID {
	return catalogs.ProviderDDragon
}

// Locale returns the configured locale.
func (c *Client) Locale() string {
	return c.locale
}

// Versions returns the version index as published, newest first.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	var list []string
	if err := c.http.GetJSON(ctx, "/api/versions.json", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchAll returns every record of kind at version.
func (c *Client) FetchAll(ctx context.Context, kind catalogs.Kind, version string) ([]catalogs.Record, error) {
	records, err := c.load(ctx, kind, version)
	if err != nil {
		return nil, err
	}
	out := make([]catalogs.Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out, nil
}

// FetchOne returns the record with apiName id at version. A version that
// does not publish the kind at all counts as not found.
func (c *Client) FetchOne(ctx context.Context, kind catalogs.Kind, id, version string) (*catalogs.Record, error) {
	records, err := c.load(ctx, kind, version)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAssetNotFoundError(kind.String(), id, 1)
		}
		return nil, err
	}
	key := catalogs.NormalizeAPIName(id)
	for i := range records {
		if records[i].Key() == key {
			rec := records[i].Clone()
			return &rec, nil
		}
	}
	return nil, errors.NewAssetNotFoundError(kind.String(), id, 1)
}

// DataPath returns the catalog file path for kind at version.
func (c *Client) DataPath(kind catalogs.Kind, version string) (string, error) {
	file, ok := dataFiles[kind]
	if !ok {
		return "", errors.NewValidationError("kind", kind, "no Data Dragon catalog")
	}
	if strings.ContainsAny(version, "/?#") || version == "" {
		return "", errors.NewValidationError("version", version, "invalid version")
	}
	return fmt.Sprintf("/cdn/%s/data/%s/%s.json", version, c.locale, file), nil
}

// load fetches and converts one catalog file, sharing in-flight requests.
// Callers receive a shared slice and must not modify it.
func (c *Client) load(ctx context.Context, kind catalogs.Kind, version string) ([]catalogs.Record, error) {
	path, err := c.DataPath(kind, version)
	if err != nil {
		return nil, err
	}

	v, err, shared := c.group.Do(path, func() (any, error) {
		var doc catalogFile
		if err := c.http.GetJSON(ctx, path, &doc); err != nil {
			return nil, err
		}
		return convertCatalog(kind, &doc), nil
	})
	if err != nil {
		return nil, err
	}

	records := v.([]catalogs.Record)
	logging.FromContext(ctx).Debug().
		Str("provider", c.ID().String()).
		Str("kind", kind.String()).
		Str("version", version).
		Int("records", len(records)).
		Bool("shared", shared).
		Msg("Loaded catalog")
	return records, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}
