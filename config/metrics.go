package config

const defaultMetricsRingCapacity = 1024

type MetricsCfg struct {
	// RingCapacity bounds the in-memory event stream; the oldest events are
	// dropped past the cap.
	RingCapacity int `yaml:"ring_capacity"`
}

func (cfg *MetricsCfg) Enabled() bool {
	return cfg != nil
}
