package caching

import (
	"context"
	"time"
)

type noopCache struct{}

// NewNoopCache returns a cache that always misses and accepts every write
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Backend() string {
	return "none"
}

func (noopCache) Get(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (noopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (noopCache) Invalidate(context.Context, ...string) error {
	return nil
}

func (noopCache) InvalidatePrefix(context.Context, string) error {
	return nil
}

func (noopCache) Ping(context.Context) error {
	return nil
}
