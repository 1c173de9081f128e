package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strata-cache/go-strata-cache/config"
)

// RedisTier holds no cache state beyond the client handle; the remote store
// synchronizes itself and owns its own copies and expiry timing.
type RedisTier struct {
	cfg    *config.RemoteCfg
	rdb    *redis.Client
	logger *slog.Logger
}

func New(cfg *config.RemoteCfg, logger *slog.Logger) Tier {
	if !cfg.Enabled() {
		return &NoOpTier{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	return &RedisTier{cfg: cfg, rdb: rdb, logger: logger}
}

func (t *RedisTier) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	payload, err := t.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			t.logger.Debug("remote tier get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return payload, true
}

func (t *RedisTier) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	if ttl < 0 {
		ttl = 0 // redis: 0 means no expiry
	}
	if err := t.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		t.logger.Debug("remote tier set failed", "key", key, "error", err)
		return false
	}
	return true
}

func (t *RedisTier) Delete(ctx context.Context, key string) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	n, err := t.rdb.Del(ctx, key).Result()
	if err != nil {
		t.logger.Debug("remote tier delete failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

func (t *RedisTier) Exists(ctx context.Context, key string) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	n, err := t.rdb.Exists(ctx, key).Result()
	if err != nil {
		t.logger.Debug("remote tier exists failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

func (t *RedisTier) Clear(ctx context.Context) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	if err := t.rdb.FlushDB(ctx).Err(); err != nil {
		t.logger.Warn("remote tier clear failed", "error", err)
		return false
	}
	return true
}

func (t *RedisTier) IsConnected(ctx context.Context) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.rdb.Ping(ctx).Err() == nil
}

func (t *RedisTier) Enabled() bool { return true }

func (t *RedisTier) Close() error { return t.rdb.Close() }

func (t *RedisTier) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.cfg.OpTimeout)
}
