package cpe

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CatalogResult is the cached unit for a single outbound NVD query — the
// parsed envelope fields downstream components consume (spec §4.F/§4.E).
type CatalogResult struct {
	TotalResults int
	Products     []CatalogProduct
}

// CatalogProduct is a single product record from the NVD catalog envelope.
type CatalogProduct struct {
	CPEName   string
	CPENameID string
	Deprecated bool
	Title     string
}

// Gate is the process-wide Rate Limiter + Cache of spec §4.E: a single
// serialization point in front of the NVD catalog. Concurrent callers
// form an implicit FIFO through the underlying rate.Limiter; a fresh
// cache hit never touches the limiter at all.
type Gate struct {
	limiter *rate.Limiter
	store   CacheStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewGate constructs a Gate with the given minimum interval between
// outbound calls, cache TTL, and backing store.
func NewGate(minInterval, ttl time.Duration, store CacheStore, logger *zap.Logger) *Gate {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		// burst of 1: exactly one request may proceed immediately, every
		// subsequent one waits out the full interval — this is what
		// "minimum interval between outbound requests" means.
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// FetchFunc performs the actual outbound NVD call.
type FetchFunc func(ctx context.Context) (CatalogResult, error)

// Fetch returns the cached result for (exactCPE, keyword) if fresh;
// otherwise it waits for the rate limiter, performs fetch, caches the
// result, and returns it. Cancellation of ctx during the wait propagates
// as a KindCancelled error and never corrupts limiter or cache state.
func (g *Gate) Fetch(ctx context.Context, exactCPE, keyword string, fetch FetchFunc) (CatalogResult, error) {
	key := fingerprint(exactCPE, keyword)

	if cached, ok := g.store.Get(key, g.ttl); ok {
		g.logger.Debug("catalog cache hit", zap.String("key", key))
		return cached, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return CatalogResult{}, newError(KindCancelled, "rate limiter wait cancelled", err)
	}

	result, err := fetch(ctx)
	if err != nil {
		return CatalogResult{}, err
	}

	g.store.Set(key, result)
	return result, nil
}
