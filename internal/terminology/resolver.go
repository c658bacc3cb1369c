package terminology

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/metrics"
)

// Source identifies where a resolution's display text came from.
type Source string

const (
	// SourceCache means the display was memoized from an earlier lookup.
	SourceCache Source = "cache"
	// SourceGateway means the external terminology service answered.
	SourceGateway Source = "gateway"
	// SourceTable means the static ATC fallback table answered.
	SourceTable Source = "table"
	// SourceEcho means nothing resolved and the code itself is the display.
	SourceEcho Source = "echo"
)

// Resolution is the outcome of resolving one (code, system OID) pair.
// Display is never empty for a non-empty code: when every lookup misses the
// original code is echoed back so callers need no miss branch.
type Resolution struct {
	Code    string
	System  string
	Display string
	Source  Source
}

// Resolved reports whether the display is real text rather than the echoed
// code.
func (r Resolution) Resolved() bool {
	return r.Source != SourceEcho
}

// Resolver maps coded values to display text: gateway first, then the
// static table, then echoing the code. Lookup failures are misses, never
// errors; a parse must not abort because terminology is down.
type Resolver struct {
	gateway  Gateway
	cache    *Cache
	language string
	logger   zerolog.Logger
}

// NewResolver creates a Resolver. gateway may be nil, in which case only
// the static table and echo paths apply.
func NewResolver(gateway Gateway, cache *Cache, language string, logger zerolog.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{
		gateway:  gateway,
		cache:    cache,
		language: language,
		logger:   logger,
	}
}

// Resolve maps (code, systemOID) to display text. Gateway hits and table
// hits are cached; echoes are not, so a recovered gateway can still improve
// later parses.
func (r *Resolver) Resolve(ctx context.Context, code, systemOID string) Resolution {
	if code == "" {
		return Resolution{System: systemOID, Source: SourceEcho}
	}

	if display, ok := r.cache.Get(code, systemOID); ok {
		metrics.CodeLookupsTotal.WithLabelValues(string(SourceCache)).Inc()
		return Resolution{Code: code, System: systemOID, Display: display, Source: SourceCache}
	}

	if r.gateway != nil {
		display, err := r.gateway.Lookup(ctx, code, systemOID, r.language)
		if err != nil {
			r.logger.Debug().Err(err).
				Str("code", code).
				Str("system", systemOID).
				Msg("terminology lookup failed, using fallback")
		}
		if err == nil && display != "" {
			r.cache.Put(code, systemOID, display)
			metrics.CodeLookupsTotal.WithLabelValues(string(SourceGateway)).Inc()
			return Resolution{Code: code, System: systemOID, Display: display, Source: SourceGateway}
		}
	}

	if display, ok := fallbackDisplay(code, systemOID); ok {
		r.cache.Put(code, systemOID, display)
		metrics.CodeLookupsTotal.WithLabelValues(string(SourceTable)).Inc()
		return Resolution{Code: code, System: systemOID, Display: display, Source: SourceTable}
	}

	metrics.CodeLookupsTotal.WithLabelValues(string(SourceEcho)).Inc()
	return Resolution{Code: code, System: systemOID, Display: code, Source: SourceEcho}
}

// Display is Resolve reduced to the display text.
func (r *Resolver) Display(ctx context.Context, code, systemOID string) string {
	return r.Resolve(ctx, code, systemOID).Display
}
