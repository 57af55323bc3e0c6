// Package cdragon implements the Community Dragon catalog: a single
// always-latest document per locale whose set roster lists the ids every
// snapshot must carry.
//
// The roster and the bulk records come from the same set entry, so a roster
// id is missing from the bulk result only when its entry fails conversion
// (for example an entry without a name).
package cdragon

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
	"github.com/agentstation/tftmeta/pkg/sources"
)

// Client is a Community Dragon client. Concurrent downloads of the
// document are collapsed into one; Pin fixes a single download for the
// duration of a pipeline run.
type Client struct {
	http   *transport.Client
	locale string
	set    string
	group  singleflight.Group
}

var (
	_ sources.LatestCatalog = (*Client)(nil)
	_ sources.IDLister      = (*Client)(nil)
	_ sources.Pinner        = (*Client)(nil)
	_ sources.IDLister      = (*Pinned)(nil)
)

type options struct {
	baseURL   string
	locale    string
	set       string
	timeout   time.Duration
	retries   int
	userAgent string
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides the Community Dragon base URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithLocale sets the document locale. Community Dragon publishes
// lowercase locales, so "en_US" becomes "en_us".
func WithLocale(locale string) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// WithSet selects the set roster, e.g. "14".
func WithSet(set string) Option {
	return func(o *options) {
		if set != "" {
			o.set = set
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

// New creates a Community Dragon client.
func New(opts ...Option) *Client {
	o := &options{
		baseURL: constants.CDragonURL,
		locale:  constants.DefaultLocale,
		set:     constants.DefaultCurrentSet,
		timeout: constants.DefaultHTTPTimeout,
		retries: constants.DefaultRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		http: transport.New(catalogs.ProviderCDragon.String(), o.baseURL,
			transport.WithTimeout(o.timeout),
			transport.WithRetries(o.retries),
			transport.WithUserAgent(o.userAgent),
		),
		locale: strings.ToLower(o.locale),
		set:    o.set,
	}
}

// ID returns the provider ID.
func (c *Client) ID() catalogs.ProviderID {
	return catalogs.ProviderCDragon
}

// DocumentPath returns the path of the localized document.
func (c *Client) DocumentPath() string {
	return fmt.Sprintf("/latest/cdragon/tft/%s.json", c.locale)
}

// FetchAll returns every well-formed record of kind. Units and traits
// come from the selected set; items and augments from the shared item list.
// Each call downloads the document; use Pin to share one download.
func (c *Client) FetchAll(ctx context.Context, kind catalogs.Kind) ([]catalogs.Record, error) {
	if !kind.IsValid() {
		return nil, errors.NewValidationError("kind", kind, "unknown kind")
	}
	p, err := c.pin(ctx)
	if err != nil {
		return nil, err
	}
	return p.FetchAll(ctx, kind)
}

// ListIDs returns the roster of the selected set. Only units and traits
// have a roster; items and augments return nil.
func (c *Client) ListIDs(ctx context.Context, kind catalogs.Kind) ([]string, error) {
	if kind != catalogs.KindUnit && kind != catalogs.KindTrait {
		return nil, nil
	}
	p, err := c.pin(ctx)
	if err != nil {
		return nil, err
	}
	return p.ListIDs(ctx, kind)
}

// Pin downloads the document once and returns a view over it.
func (c *Client) Pin(ctx context.Context) (sources.LatestCatalog, error) {
	return c.pin(ctx)
}

func (c *Client) pin(ctx context.Context) (*Pinned, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return &Pinned{doc: doc, set: c.set}, nil
}

// load downloads the document. Concurrent callers share one request.
// Callers must not modify the result.
func (c *Client) load(ctx context.Context) (*document, error) {
	path := c.DocumentPath()
	v, err, shared := c.group.Do(path, func() (any, error) {
		var doc document
		if err := c.http.GetJSON(ctx, path, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}

	doc := v.(*document)
	logging.FromContext(ctx).Debug().
		Str("provider", c.ID().String()).
		Int("items", len(doc.Items)).
		Int("sets", len(doc.SetData)).
		Bool("shared", shared).
		Msg("Loaded document")
	return doc, nil
}

// Pinned is a read-only view over one downloaded document.
type Pinned struct {
	doc *document
	set string
}

// ID returns the provider ID.
func (p *Pinned) ID() catalogs.ProviderID {
	return catalogs.ProviderCDragon
}

// FetchAll returns every well-formed record of kind from the document.
func (p *Pinned) FetchAll(_ context.Context, kind catalogs.Kind) ([]catalogs.Record, error) {
	switch kind {
	case catalogs.KindItem:
		return convertItems(p.doc.Items, false), nil
	case catalogs.KindAugment:
		return convertItems(p.doc.Items, true), nil
	case catalogs.KindUnit, catalogs.KindTrait:
	default:
		return nil, errors.NewValidationError("kind", kind, "unknown kind")
	}

	set := selectSet(p.doc.SetData, p.set)
	if set == nil {
		return nil, nil
	}
	if kind == catalogs.KindUnit {
		return convertChampions(set), nil
	}
	return convertTraits(set), nil
}

// ListIDs returns the roster of the selected set from the document.
func (p *Pinned) ListIDs(_ context.Context, kind catalogs.Kind) ([]string, error) {
	if kind != catalogs.KindUnit && kind != catalogs.KindTrait {
		return nil, nil
	}
	set := selectSet(p.doc.SetData, p.set)
	if set == nil {
		return nil, nil
	}

	var ids []string
	if kind == catalogs.KindUnit {
		for _, ch := range set.Champions {
			// Summons and training dummies carry no traits.
			if len(ch.Traits) == 0 || catalogs.NormalizeAPIName(ch.APIName) == "" {
				continue
			}
			ids = append(ids, strings.TrimSpace(ch.APIName))
		}
		return ids, nil
	}
	for _, t := range set.Traits {
		if catalogs.NormalizeAPIName(t.APIName) == "" {
			continue
		}
		ids = append(ids, strings.TrimSpace(t.APIName))
	}
	return ids, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}
