package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/observability"
)

// RateLimitedProvider wraps a Provider with a token-bucket limiter.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a rate limited provider.
// rps may be fractional for less than one request per second.
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Snapshot waits for limiter permission, then forwards to the wrapped provider.
func (r *RateLimitedProvider) Snapshot(ctx context.Context, d district.District) (*Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Snapshot(ctx, d)
}

// Name returns the provider name.
func (r *RateLimitedProvider) Name() string {
	return r.provider.Name() + " [rate limited]"
}

// InstrumentedProvider records request outcomes and latency.
type InstrumentedProvider struct {
	provider Provider
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// NewInstrumentedProvider wraps provider with metrics.
func NewInstrumentedProvider(provider Provider, metrics *observability.Metrics, clock clockwork.Clock) *InstrumentedProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InstrumentedProvider{provider: provider, metrics: metrics, clock: clock}
}

// Snapshot forwards to the wrapped provider and records the outcome.
func (p *InstrumentedProvider) Snapshot(ctx context.Context, d district.District) (*Snapshot, error) {
	start := p.clock.Now()
	snap, err := p.provider.Snapshot(ctx, d)
	p.metrics.UpstreamDuration.Observe(p.clock.Since(start).Seconds())
	if err != nil {
		p.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	p.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	return snap, nil
}

// Name returns the provider name.
func (p *InstrumentedProvider) Name() string {
	return p.provider.Name()
}

// CachedProvider reuses a snapshot per district for a fixed TTL.
// Errors are never cached.
type CachedProvider struct {
	provider Provider
	ttl      time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snap     *Snapshot
	storedAt time.Time
}

// NewCachedProvider wraps provider with a TTL cache. metrics may be nil.
func NewCachedProvider(provider Provider, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedProvider{
		provider: provider,
		ttl:      ttl,
		clock:    clock,
		metrics:  metrics,
		entries:  make(map[string]cacheEntry),
	}
}

// Snapshot returns a cached snapshot younger than the TTL, or fetches one.
func (c *CachedProvider) Snapshot(ctx context.Context, d district.District) (*Snapshot, error) {
	key := district.Normalize(d.Name)

	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if found && c.clock.Since(e.storedAt) < c.ttl {
		c.record("hit")
		return e.snap, nil
	}
	c.record("miss")

	snap, err := c.provider.Snapshot(ctx, d)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{snap: snap, storedAt: c.clock.Now()}
	c.mu.Unlock()

	return snap, nil
}

// Name returns the provider name.
func (c *CachedProvider) Name() string {
	return c.provider.Name() + " [cached]"
}

func (c *CachedProvider) record(result string) {
	if c.metrics != nil {
		c.metrics.SnapshotCache.WithLabelValues(result).Inc()
	}
}

// Verify decorators implement Provider.
var (
	_ Provider = (*Client)(nil)
	_ Provider = (*RateLimitedProvider)(nil)
	_ Provider = (*InstrumentedProvider)(nil)
	_ Provider = (*CachedProvider)(nil)
)
