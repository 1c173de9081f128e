package manager

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/model"
)

// eventRing retains the most recent metric events in a fixed circular
// buffer; the oldest events are overwritten past the cap so the metrics
// stream itself cannot grow the heap.
type eventRing struct {
	mu   sync.Mutex
	buf  []model.Event
	next int
	size int
}

func newEventRing(cfg *config.MetricsCfg) *eventRing {
	if !cfg.Enabled() {
		return &eventRing{}
	}
	return &eventRing{buf: make([]model.Event, cfg.RingCapacity)}
}

func (r *eventRing) push(ev model.Event) {
	if len(r.buf) == 0 {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
	r.mu.Unlock()
}

// last returns up to limit events, newest first.
func (r *eventRing) last(limit int) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}
	out := make([]model.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}

/**
 * Prometheus collector.
 */

var (
	descHits = prometheus.NewDesc(
		"stratacache_hits_total", "Successful reads served by any tier.", []string{"tier"}, nil)
	descMisses = prometheus.NewDesc(
		"stratacache_misses_total", "Reads that missed every tier.", nil, nil)
	descSets = prometheus.NewDesc(
		"stratacache_sets_total", "Writes accepted by at least one tier.", nil, nil)
	descDeletes = prometheus.NewDesc(
		"stratacache_deletes_total", "Keys removed by explicit or tag delete.", nil, nil)
	descEvictions = prometheus.NewDesc(
		"stratacache_evictions_total", "Live items displaced under capacity or pressure.", nil, nil)
	descSize = prometheus.NewDesc(
		"stratacache_memory_bytes", "Summed weight of live memory tier items.", nil, nil)
	descItems = prometheus.NewDesc(
		"stratacache_memory_items", "Live memory tier item count.", nil, nil)
)

type collector struct {
	m *Manager
}

// Collector exposes the engine counters to a Prometheus registry. The
// collector reads the same atomics as Stats, so registration is optional
// and free when unused.
func (m *Manager) Collector() prometheus.Collector {
	return &collector{m: m}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descHits
	ch <- descMisses
	ch <- descSets
	ch <- descDeletes
	ch <- descEvictions
	ch <- descSize
	ch <- descItems
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Stats()
	ch <- prometheus.MustNewConstMetric(descHits, prometheus.CounterValue, float64(s.MemoryHits), string(model.LayerMemory))
	ch <- prometheus.MustNewConstMetric(descHits, prometheus.CounterValue, float64(s.RemoteHits), string(model.LayerRemote))
	ch <- prometheus.MustNewConstMetric(descMisses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(descSets, prometheus.CounterValue, float64(s.Sets))
	ch <- prometheus.MustNewConstMetric(descDeletes, prometheus.CounterValue, float64(s.Deletes))
	ch <- prometheus.MustNewConstMetric(descEvictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(descSize, prometheus.GaugeValue, float64(s.SizeBytes))
	ch <- prometheus.MustNewConstMetric(descItems, prometheus.GaugeValue, float64(s.Items))
}
