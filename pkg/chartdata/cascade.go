package chartdata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/chartdata/cache"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
	"github.com/tradelens/chartdata/pkg/errors"
)

// DefaultBrokerTimeout bounds the broker-source call so a slow or unreachable
// account integration cannot stall the whole chart render.
const DefaultBrokerTimeout = 8 * time.Second

// Result is a resolved bar sequence. All bars originate from exactly one
// source.
type Result struct {
	Bars   []types.Bar
	Source types.Source
	// Cached is true when the result was served from the server-side cache
	// instead of an upstream call.
	Cached bool
}

// Resolver orchestrates the provider cascade: broker source first when the
// request carries an account id, then the market sources in priority order,
// short-circuiting on first success. Providers are awaited in sequence, never
// fanned out, so cheaper sources are exhausted before paid ones are
// attempted. Failures advance the cascade immediately; there are no retries,
// by design, since a chart must render quickly.
type Resolver struct {
	broker        provider.Provider
	markets       []provider.Provider
	cache         *cache.Memory
	log           *logger.Logger
	brokerTimeout time.Duration
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithBrokerTimeout overrides the broker-source time box.
func WithBrokerTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.brokerTimeout = d
		}
	}
}

// NewResolver creates a cascade resolver. broker may be nil when no broker
// integration is configured; markets are tried in the given order.
func NewResolver(serverCache *cache.Memory, log *logger.Logger, broker provider.Provider, markets []provider.Provider, opts ...ResolverOption) *Resolver {
	if log == nil {
		log = logger.NewNopLogger()
	}

	r := &Resolver{
		broker:        broker,
		markets:       markets,
		cache:         serverCache,
		log:           log,
		brokerTimeout: DefaultBrokerTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve runs the cascade for one fetch window. The server cache is
// consulted first; on a miss, the first provider returning a non-empty bar
// sequence wins. Only market-source results are written back to the cache:
// broker data is time-sensitive and already served fresh via its own path,
// and nothing synthetic ever reaches this resolver.
//
// When every source fails the returned error carries ErrCodeNoData; this is
// the designed outcome when no market-data keys are configured, not an
// exceptional condition.
func (r *Resolver) Resolve(ctx context.Context, req provider.Request) (Result, error) {
	key := cache.ServerKey(req.Symbol, req.StartDate, req.EndDate, req.Interval)

	if entry, ok := r.cache.Get(key); ok {
		r.log.Debug("serving bars from server cache", zap.String("key", key))

		return Result{Bars: entry.Bars, Source: entry.Source, Cached: true}, nil
	}

	if req.AccountID != "" && r.broker != nil {
		if bars, ok := r.tryBroker(ctx, req); ok {
			return Result{Bars: bars, Source: r.broker.Name()}, nil
		}
	}

	for _, p := range r.markets {
		bars, err := p.Fetch(ctx, req)
		if err != nil || len(bars) == 0 {
			// Adapter-level failures are non-fatal to the cascade.
			r.log.Debug("market source failed, advancing cascade",
				zap.String("source", string(p.Name())),
				zap.Error(err))

			continue
		}

		if p.Name().IsCacheable() {
			r.cache.Set(key, cache.TagOHLC, cache.Entry{Bars: bars, Source: p.Name()})
		}

		return Result{Bars: bars, Source: p.Name()}, nil
	}

	return Result{}, errors.Newf(errors.ErrCodeNoData,
		"no market data available for %s %s..%s", req.Symbol, req.StartDate, req.EndDate)
}

// tryBroker runs the time-boxed broker-source attempt. A timeout is treated
// identically to a failed fetch; it is never retried within the same request.
func (r *Resolver) tryBroker(ctx context.Context, req provider.Request) ([]types.Bar, bool) {
	brokerCtx, cancel := context.WithTimeout(ctx, r.brokerTimeout)
	defer cancel()

	bars, err := r.broker.Fetch(brokerCtx, req)
	if err != nil || len(bars) == 0 {
		r.log.Debug("broker source failed, advancing cascade",
			zap.String("account", req.AccountID),
			zap.Error(err))

		return nil, false
	}

	return bars, true
}
