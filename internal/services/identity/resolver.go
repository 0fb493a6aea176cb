package identity

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/storage"
)

// lockStripes is the number of per-token allocation locks.
// Distinct tokens proceed concurrently; same-token resolutions serialize.
const lockStripes = 64

// Resolver maps a verified registered user id or an ephemeral guest token
// to one canonical identity. The store is authoritative for guest mappings;
// the in-process cache is a read-through layer only.
type Resolver struct {
	store  storage.Store
	logger *slog.Logger

	cacheMu sync.RWMutex
	cache   map[string]int64 // ephemeral token -> canonical guest number

	stripes [lockStripes]sync.Mutex
}

// NewResolver creates a new identity resolver
func NewResolver(store storage.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		cache:  make(map[string]int64),
	}
}

// Resolve returns the canonical identity for a submission.
// A verified registered user id is canonical as-is. Guest tokens resolve
// through cache, then store, allocating a new canonical number on first
// sight. Store failure fails closed: no identity is minted that the store
// cannot vouch for.
func (r *Resolver) Resolve(ctx context.Context, registeredUserID, ephemeralToken string) (model.Identity, error) {
	if registeredUserID != "" {
		return model.Registered(registeredUserID), nil
	}

	if ephemeralToken == "" {
		return model.Identity{}, fmt.Errorf("%w: no user id or guest token", model.ErrIdentityResolution)
	}

	r.cacheMu.RLock()
	number, ok := r.cache[ephemeralToken]
	r.cacheMu.RUnlock()
	if ok {
		return model.Guest(number), nil
	}

	// Serialize first-time resolution per token so concurrent callers
	// agree on one canonical number
	stripe := &r.stripes[stripeFor(ephemeralToken)]
	stripe.Lock()
	defer stripe.Unlock()

	// Another caller may have filled the cache while we waited
	r.cacheMu.RLock()
	number, ok = r.cache[ephemeralToken]
	r.cacheMu.RUnlock()
	if ok {
		return model.Guest(number), nil
	}

	number, err := r.store.EnsureGuestNumber(ctx, ephemeralToken)
	if err != nil {
		r.logger.Error("guest allocation failed",
			slog.String("error", err.Error()),
		)
		return model.Identity{}, fmt.Errorf("%w: %w", model.ErrIdentityResolution, model.ErrStoreUnavailable)
	}

	r.cacheMu.Lock()
	r.cache[ephemeralToken] = number
	r.cacheMu.Unlock()

	return model.Guest(number), nil
}

func stripeFor(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return h.Sum32() % lockStripes
}
