// Package versions resolves which Data Dragon version a pipeline run
// queries, and owns the newest-first version list used by fallback search.
package versions

import (
	"context"
	"slices"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
)

// Index lists every published version.
type Index interface {
	Versions(ctx context.Context) ([]string, error)
}

// Resolution is the outcome of version resolution.
type Resolution struct {
	Version  string   `json:"version" yaml:"version"`
	Versions []string `json:"versions" yaml:"versions"` // Newest first
	Fallback bool     `json:"fallback" yaml:"fallback"` // Version is the configured last-known-good
}

// Resolver picks the concrete version to query.
type Resolver struct {
	index      Index
	currentSet string
	fallback   string
	provider   string
}

// NewResolver creates a resolver. currentSet is matched against the
// leading segment of each version; fallbackVersion is served when the
// index is unreachable.
func NewResolver(index Index, currentSet, fallbackVersion string) *Resolver {
	if fallbackVersion == "" {
		fallbackVersion = constants.DefaultFallbackVersion
	}
	return &Resolver{
		index:      index,
		currentSet: strings.TrimSpace(currentSet),
		fallback:   fallbackVersion,
		provider:   catalogs.ProviderDDragon.String(),
	}
}

// Resolve returns the version to query. With no requested version it
// selects the newest entry of the current set, or the newest entry overall.
// A requested version is used as is; the index is still consulted for
// the fallback list.
func (r *Resolver) Resolve(ctx context.Context, requested string) (Resolution, error) {
	requested = strings.TrimSpace(requested)
	list, err := r.fetch(ctx)

	if requested != "" {
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).
				Str("version", requested).
				Msg("Version index unavailable, fallback search limited to requested version")
			return Resolution{Version: requested, Versions: []string{requested}}, nil
		}
		return Resolution{Version: requested, Versions: list}, nil
	}
	if err != nil {
		return Resolution{}, err
	}

	for _, v := range list {
		if r.currentSet != "" && Set(v) == r.currentSet {
			return Resolution{Version: v, Versions: list}, nil
		}
	}
	return Resolution{Version: list[0], Versions: list}, nil
}

// ResolveOrFallback never fails: when the index is unreachable the
// configured last-known-good version is returned with Fallback set.
func (r *Resolver) ResolveOrFallback(ctx context.Context, requested string) Resolution {
	res, err := r.Resolve(ctx, requested)
	if err == nil {
		return res
	}
	logging.FromContext(ctx).Warn().Err(err).
		Str("fallback_version", r.fallback).
		Msg("Using last-known-good version")
	return Resolution{Version: r.fallback, Versions: []string{r.fallback}, Fallback: true}
}

func (r *Resolver) fetch(ctx context.Context) ([]string, error) {
	raw, err := r.index.Versions(ctx)
	if err != nil {
		return nil, errors.NewProviderUnavailableError(r.provider, "versions", err)
	}
	list := Sort(raw)
	if len(list) == 0 {
		return nil, errors.NewProviderUnavailableError(r.provider, "versions", errors.New("empty version index"))
	}
	return list, nil
}

// Set returns the leading dot-segment of a version ("14" for "14.2.1").
func Set(version string) string {
	set, _, _ := strings.Cut(version, ".")
	return set
}

// parse accepts plain dotted numeric releases. Pre-release and build
// suffixes, a leading "v" and legacy entries such as "lolpatch_3.7" are
// rejected.
func parse(v string) (*goversion.Version, bool) {
	if v == "" || v[0] < '0' || v[0] > '9' {
		return nil, false
	}
	pv, err := goversion.NewVersion(v)
	if err != nil || pv.Prerelease() != "" || pv.Metadata() != "" {
		return nil, false
	}
	return pv, true
}

// IsRelease reports whether v is a numeric release version.
func IsRelease(v string) bool {
	_, ok := parse(v)
	return ok
}

// Compare orders versions numerically segment by segment. Missing
// segments count as zero and non-release strings sort below every
// release. It returns -1 if a is older than b.
func Compare(a, b string) int {
	pa, okA := parse(a)
	pb, okB := parse(b)
	switch {
	case okA && okB:
		return pa.Compare(pb)
	case okA:
		return 1
	case okB:
		return -1
	}
	return strings.Compare(a, b)
}

// Sort returns the release versions of list, newest first, without
// duplicates. Equal versions with different spellings keep input order.
func Sort(list []string) []string {
	type parsed struct {
		raw string
		v   *goversion.Version
	}
	out := make([]parsed, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		v, ok := parse(raw)
		if !ok || seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, parsed{raw: raw, v: v})
	}
	slices.SortStableFunc(out, func(a, b parsed) int {
		return b.v.Compare(a.v)
	})

	sorted := make([]string, len(out))
	for i, p := range out {
		sorted[i] = p.raw
	}
	return sorted
}

// Older returns the versions in list strictly older than v, newest first.
// list must be sorted newest first.
func Older(list []string, v string) []string {
	i := slices.IndexFunc(list, func(e string) bool {
		return Compare(e, v) < 0
	})
	if i < 0 {
		return nil
	}
	return slices.Clone(list[i:])
}
