package config

import "time"

const (
	defaultSweepInterval   = time.Minute
	defaultReclaimsPerSec  = 100
	defaultPressurePercent = 85.0
	defaultEvictFraction   = 0.2
)

type MaintenanceCfg struct {
	// SweepInterval is the period between background sweep cycles.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// ReclaimsPerSec paces expired-item reclamation batches so a sweep over
	// a large tier does not monopolize the tier lock.
	ReclaimsPerSec int `yaml:"reclaims_per_sec"`

	// PressurePercent is the process-RSS share of host memory above which
	// the sweeper evicts proactively, even when ceilings are not breached.
	PressurePercent float64 `yaml:"pressure_percent"`

	// EvictFraction is the share of tracked bytes released per pressure
	// eviction. Example: 0.2 drops 20% of the tier.
	EvictFraction float64 `yaml:"evict_fraction"`
}

func (cfg *MaintenanceCfg) Enabled() bool {
	return cfg != nil
}
