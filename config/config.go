package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cache groups configuration of all cache subsystems.
// Each optional component can be disabled by setting its sub-config to nil.
type Cache struct {
	Memory MemoryCfg `yaml:"memory"`

	// Eviction configures capacity- and pressure-triggered eviction.
	// If nil, eviction is disabled and writes that breach a ceiling fail
	// with a capacity error instead of displacing older items.
	Eviction *EvictionCfg `yaml:"eviction"`

	// Compression configures transparent compression of stored values.
	// If nil, compression is disabled; compressed payloads written by other
	// processes are still decompressed on read.
	Compression *CompressionCfg `yaml:"compression"`

	// Remote configures the optional Redis-backed second tier.
	// If nil, the engine runs memory-only.
	Remote *RemoteCfg `yaml:"remote"`

	// Maintenance configures the background sweeper that reclaims expired
	// items and relieves host memory pressure. If nil, expired items are
	// only reclaimed lazily when observed by reads.
	Maintenance *MaintenanceCfg `yaml:"maintenance"`

	// Metrics configures the per-operation event ring and the optional
	// Prometheus collector. If nil, no events are recorded.
	Metrics *MetricsCfg `yaml:"metrics"`

	// Persistence configures the optional dump/load hook for the memory
	// tier. If nil, nothing is persisted across restarts.
	Persistence *PersistenceCfg `yaml:"persistence"`

	// Preload lists keys warmed from the remote tier into the memory tier
	// at startup. Ignored when the remote tier is disabled.
	Preload []string `yaml:"preload"`
}

// AdjustConfig fills derived fields and defaults for zero values.
// Call it once after constructing or unmarshalling a config.
func (cfg *Cache) AdjustConfig() {
	if cfg.Memory.MaxItems <= 0 {
		cfg.Memory.MaxItems = defaultMaxItems
	}
	if cfg.Memory.SizeBytes <= 0 {
		cfg.Memory.SizeBytes = defaultSizeBytes
	}
	if cfg.Memory.IsTelemetryLogsEnabled && cfg.Memory.TelemetryLogsInterval <= 0 {
		cfg.Memory.TelemetryLogsInterval = defaultTelemetryLogsInterval
	}

	if cfg.Eviction.Enabled() {
		if cfg.Eviction.Strategy == "" {
			cfg.Eviction.Strategy = StrategyLRU
		}
		if cfg.Eviction.AdaptivePriorityWeight == 0 &&
			cfg.Eviction.AdaptiveHitRateWeight == 0 &&
			cfg.Eviction.AdaptiveFreshnessWeight == 0 {
			cfg.Eviction.AdaptivePriorityWeight = defaultAdaptivePriorityWeight
			cfg.Eviction.AdaptiveHitRateWeight = defaultAdaptiveHitRateWeight
			cfg.Eviction.AdaptiveFreshnessWeight = defaultAdaptiveFreshnessWeight
		}
		if cfg.Eviction.HitsPerMinuteCeiling <= 0 {
			cfg.Eviction.HitsPerMinuteCeiling = defaultHitsPerMinuteCeiling
		}
	}

	if cfg.Compression.Enabled() {
		if cfg.Compression.Level == 0 {
			cfg.Compression.Level = CompressDefaultCompression
		}
		if cfg.Compression.ThresholdBytes <= 0 {
			cfg.Compression.ThresholdBytes = defaultCompressionThreshold
		}
	}

	if cfg.Remote.Enabled() {
		if cfg.Remote.OpTimeout <= 0 {
			cfg.Remote.OpTimeout = defaultRemoteOpTimeout
		}
		if cfg.Remote.DialTimeout <= 0 {
			cfg.Remote.DialTimeout = defaultRemoteDialTimeout
		}
	}

	if cfg.Maintenance.Enabled() {
		if cfg.Maintenance.SweepInterval <= 0 {
			cfg.Maintenance.SweepInterval = defaultSweepInterval
		}
		if cfg.Maintenance.ReclaimsPerSec <= 0 {
			cfg.Maintenance.ReclaimsPerSec = defaultReclaimsPerSec
		}
		if cfg.Maintenance.PressurePercent <= 0 {
			cfg.Maintenance.PressurePercent = defaultPressurePercent
		}
		if cfg.Maintenance.EvictFraction <= 0 {
			cfg.Maintenance.EvictFraction = defaultEvictFraction
		}
	}

	if cfg.Metrics.Enabled() && cfg.Metrics.RingCapacity <= 0 {
		cfg.Metrics.RingCapacity = defaultMetricsRingCapacity
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
