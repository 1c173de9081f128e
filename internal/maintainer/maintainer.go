// Package maintainer runs the background sweep cycle:
// Idle -> Sweeping -> PressureCheck -> (EvictingUnderPressure | Idle).
// It is independent of request traffic and stoppable: Stop is idempotent and
// guarantees no further sweep starts after it returns.
package maintainer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	gomem "github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/memory"
	"github.com/strata-cache/go-strata-cache/internal/shared/rate"
)

var ErrSweeperNotResponded = errors.New("sweeper not responded")

// sweepBatch bounds how many expired entries one reclamation pass removes
// before yielding the tier lock; the jitter paces passes between batches.
const sweepBatch = 256

type Maintainer interface {
	ForceSweep(timeout time.Duration) error
	Metrics() (sweeps, expiredItems, expiredBytes, pressureHits, pressureEvictedItems, pressureEvictedBytes int64)
	Stop()
}

type SweepWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.MaintenanceCfg
	logger   *slog.Logger
	mem      *memory.Tier
	clk      clock.Clock
	jitter   *rate.Jitter
	counters *sweepCounters

	// pressure samples process memory as a percentage of host memory;
	// replaced in tests.
	pressure func() (float64, bool)

	invokeCh chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func New(
	ctx context.Context,
	cfg *config.MaintenanceCfg,
	logger *slog.Logger,
	mem *memory.Tier,
	clk clock.Clock,
) Maintainer {
	if !cfg.Enabled() {
		return &NoOpMaintainer{}
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&SweepWorker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		mem:      mem,
		clk:      clk,
		jitter:   rate.NewJitter(ctx, cfg.ReclaimsPerSec),
		counters: newSweepCounters(),
		pressure: processMemoryPercent,
		invokeCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}).run()
}

// ForceSweep triggers a cycle out of schedule and waits until the worker
// picks it up or the timeout elapses.
func (w *SweepWorker) ForceSweep(timeout time.Duration) error {
	after := time.NewTimer(timeout)
	defer after.Stop()

	select {
	case <-w.ctx.Done():
	case w.invokeCh <- struct{}{}:
	case <-after.C:
		return ErrSweeperNotResponded
	}
	return nil
}

func (w *SweepWorker) Metrics() (sweeps, expiredItems, expiredBytes, pressureHits, pressureEvictedItems, pressureEvictedBytes int64) {
	return w.counters.snapshot()
}

// Stop cancels the worker and blocks until the loop has exited, so no sweep
// can start after it returns. Safe to call repeatedly and from any
// goroutine.
func (w *SweepWorker) Stop() {
	w.stopOnce.Do(w.cancel)
	<-w.doneCh
}

func (w *SweepWorker) run() *SweepWorker {
	w.logger.Info("maintainer is running",
		"sweep_interval", w.cfg.SweepInterval.String(),
		"pressure_percent", w.cfg.PressurePercent,
		"evict_fraction", w.cfg.EvictFraction,
	)

	go func() {
		defer close(w.doneCh)
		defer w.logger.Info("maintainer is stopped")

		ticker := w.clk.Ticker(w.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-w.invokeCh:
				w.cycle()
			case <-ticker.C:
				w.cycle()
			}
		}
	}()

	return w
}

// cycle performs one full state-machine pass. Each reclamation batch
// completes its deletions under the tier lock, so an interrupt between
// batches leaves the tier merely stale, never inconsistent.
func (w *SweepWorker) cycle() {
	w.counters.sweeps.Add(1)

	// Sweeping
	now := w.clk.Now().UnixNano()
	for {
		items, bytes := w.mem.RemoveExpired(now, sweepBatch)
		if items > 0 {
			w.counters.expiredItems.Add(items)
			w.counters.expiredBytes.Add(bytes)
		}
		if items < sweepBatch {
			break
		}
		select {
		case <-w.ctx.Done():
			return
		case <-w.jitter.Chan():
		}
	}

	// PressureCheck
	pct, ok := w.pressure()
	if !ok || pct <= w.cfg.PressurePercent {
		return
	}

	// EvictingUnderPressure
	freed, evicted := w.mem.EvictFraction(w.cfg.EvictFraction)
	w.counters.pressureHits.Add(1)
	w.counters.pressureEvictedItems.Add(evicted)
	w.counters.pressureEvictedBytes.Add(freed)
	w.logger.Info("evicted under memory pressure",
		"usage_percent", pct,
		"freed_items", evicted,
		"freed_bytes", freed,
	)
}

// processMemoryPercent reports process RSS as a share of host memory.
func processMemoryPercent() (float64, bool) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	mi, err := p.MemoryInfo()
	if err != nil || mi == nil {
		return 0, false
	}
	vm, err := gomem.VirtualMemory()
	if err != nil || vm == nil || vm.Total == 0 {
		return 0, false
	}
	return float64(mi.RSS) / float64(vm.Total) * 100, true
}
