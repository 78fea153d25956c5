package caching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Aside wraps a Cache with read-through and best-effort invalidation.
// Cache failures are logged and never surface to callers.
type Aside struct {
	cache   Cache
	logger  *logrus.Entry
	timeout time.Duration
}

// NewAside builds the cache-aside helper. timeout bounds every cache round trip.
func NewAside(cache Cache, logger *logrus.Logger, timeout time.Duration) *Aside {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &Aside{
		cache:   cache,
		logger:  logger.WithFields(logrus.Fields{"component": "cache", "backend": cache.Backend()}),
		timeout: timeout,
	}
}

// Cache returns the underlying store
func (a *Aside) Cache() Cache { return a.cache }

func (a *Aside) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Load fills dst from the cache or, on a miss or any cache failure, from loader.
// A fresh load is written back with ttl. Returns true when served from cache.
func (a *Aside) Load(ctx context.Context, key string, ttl time.Duration, dst interface{}, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	if data := a.get(ctx, key); data != nil {
		err := json.Unmarshal(data, dst)
		if err == nil {
			return true, nil
		}
		a.logger.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
	}

	value, err := loader(ctx)
	if err != nil {
		return false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	a.set(ctx, key, data, ttl)
	return false, nil
}

func (a *Aside) get(ctx context.Context, key string) []byte {
	cctx, cancel := a.withTimeout(ctx)
	defer cancel()
	data, err := a.cache.Get(cctx, key)
	if err != nil {
		a.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		return nil
	}
	return data
}

func (a *Aside) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	cctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.cache.Set(cctx, key, data, ttl); err != nil {
		a.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Invalidate drops exact keys
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	cctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.cache.Invalidate(cctx, keys...); err != nil {
		a.logger.WithError(err).WithField("keys", keys).Warn("cache invalidate failed")
	}
}

// InvalidatePrefix drops every key under prefix
func (a *Aside) InvalidatePrefix(ctx context.Context, prefixes ...string) {
	for _, prefix := range prefixes {
		cctx, cancel := a.withTimeout(ctx)
		if err := a.cache.InvalidatePrefix(cctx, prefix); err != nil {
			a.logger.WithError(err).WithField("prefix", prefix).Warn("cache prefix invalidate failed")
		}
		cancel()
	}
}
