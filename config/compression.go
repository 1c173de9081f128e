package config

// Supported levels mirror flate:
//
//	CompressNoCompression      = 0
//	CompressBestSpeed          = 1
//	CompressBestCompression    = 9
//	CompressDefaultCompression = 6
const (
	CompressNoCompression      = 0
	CompressBestSpeed          = 1
	CompressBestCompression    = 9
	CompressDefaultCompression = 6
)

const defaultCompressionThreshold = 1024

type CompressionCfg struct {
	Level int `yaml:"level"`

	// ThresholdBytes is the serialized size above which values are
	// compressed. A per-call override bypasses the threshold entirely.
	ThresholdBytes int `yaml:"threshold"`
}

func (cfg *CompressionCfg) Enabled() bool {
	return cfg != nil
}
