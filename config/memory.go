package config

import "time"

const (
	defaultSizeBytes             = 256 << 20 // 256MiB
	defaultMaxItems              = 100_000
	defaultTelemetryLogsInterval = time.Minute
)

type MemoryCfg struct {
	// SizeBytes is the hard ceiling on the summed weight of live items.
	SizeBytes int64 `yaml:"size"`

	// MaxItems is the hard ceiling on the number of live items.
	MaxItems int64 `yaml:"max_items"`

	// DefaultTTL is applied to writes that carry no per-call TTL and to
	// items backfilled from the remote tier. Zero means items never expire
	// unless a TTL is given explicitly.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// IsTelemetryLogsEnabled turns on the periodic stats log loop.
	IsTelemetryLogsEnabled bool `yaml:"stat_logs_enabled"`

	// TelemetryLogsInterval is the period of the stats log loop.
	TelemetryLogsInterval time.Duration `yaml:"stat_logs_interval"`
}
