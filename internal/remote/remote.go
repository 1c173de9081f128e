// Package remote adapts the optional Redis-backed second tier behind a
// narrow interface. Every call is bounded by the configured timeout and
// reports failure through its return value: a down or absent remote tier
// must never surface as an error to cache callers.
package remote

import (
	"context"
	"time"
)

type Tier interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	Exists(ctx context.Context, key string) bool
	Clear(ctx context.Context) bool
	IsConnected(ctx context.Context) bool
	Enabled() bool
	Close() error
}
