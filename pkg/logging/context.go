package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the default.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// WithFields attaches arbitrary fields to the context logger.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	return annotate(ctx, func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = addField(c, k, v)
		}
		return c
	})
}

// WithProvider tags events with the catalog provider id.
func WithProvider(ctx context.Context, provider string) context.Context {
	return annotate(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("provider", provider) })
}

// WithKind tags events with the asset kind.
func WithKind(ctx context.Context, kind string) context.Context {
	return annotate(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("kind", kind) })
}

// WithVersion tags events with a patch version.
func WithVersion(ctx context.Context, version string) context.Context {
	return annotate(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("version", version) })
}

// WithCacheKey tags events with the snapshot cache key.
func WithCacheKey(ctx context.Context, key string) context.Context {
	return annotate(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("cache_key", key) })
}

func annotate(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	l := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &l)
}
