// Package telemetry periodically logs a per-interval digest of engine
// activity: tier traffic, reclamation and pressure work, and current storage
// occupancy.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/maintainer"
	"github.com/strata-cache/go-strata-cache/internal/manager"
	"github.com/strata-cache/go-strata-cache/internal/memory"
	"github.com/strata-cache/go-strata-cache/internal/shared/bytes"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *config.Cache
	logger     *slog.Logger
	manager    *manager.Manager
	mem        *memory.Tier
	maintainer maintainer.Maintainer
	interval   time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	mgr *manager.Manager,
	mem *memory.Tier,
	mnt maintainer.Maintainer,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		logger:     logger,
		manager:    mgr,
		mem:        mem,
		maintainer: mnt,
		interval:   cfg.Memory.TelemetryLogsInterval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Memory.IsTelemetryLogsEnabled {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	hardLimit := bytes.FmtMem(uint64(l.cfg.Memory.SizeBytes))

	s := newSampler(l.manager, l.mem, l.maintainer)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("traffic",
				append(common,
					"hits", int64(d.hits),
					"misses", int64(d.misses),
					"sets", int64(d.sets),
					"deletes", int64(d.deletes),
					"memory_hits", int64(d.memoryHits),
					"remote_hits", int64(d.remoteHits),
				)...,
			)

			if d.evictedItems > 0 || d.evictedBytes > 0 {
				l.logger.Info("evictor",
					append(common,
						"freed_items", int64(d.evictedItems),
						"freed_bytes", bytes.FmtMem(d.evictedBytes),
					)...,
				)
			}

			if l.cfg.Maintenance.Enabled() {
				l.logger.Info("maintainer",
					append(common,
						"sweeps", int64(d.sweeps),
						"expired_items", int64(d.expiredItems),
						"expired_bytes", bytes.FmtMem(d.expiredBytes),
						"pressure_hits", int64(d.pressureHits),
						"pressure_freed_items", int64(d.pressureEvictedItems),
						"pressure_freed_bytes", bytes.FmtMem(d.pressureEvictedBytes),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"size", bytes.FmtMem(uint64(l.mem.Mem())),
					"entries", l.mem.Len(),
					"hard_limit", hardLimit,
				)...,
			)
		}
	}
}
