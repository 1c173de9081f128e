package config

type PersistenceCfg struct {
	// Dir specifies the directory where cache dump files are stored.
	// The directory must exist and be writable.
	Dir string `yaml:"dump_dir"`

	// Name defines the base name of the cache dump file.
	// The final file name may include extensions depending on configuration
	// (e.g., ".gz" when Gzip is enabled).
	Name string `yaml:"dump_name"`

	// Gzip enables gzip compression for cache dump files.
	Gzip bool `yaml:"gzip"`

	// Crc32Control verifies a per-record checksum on load; corrupted
	// records are skipped rather than failing the whole load.
	Crc32Control bool `yaml:"crc32_control"`
}

func (cfg *PersistenceCfg) Enabled() bool {
	return cfg != nil
}
