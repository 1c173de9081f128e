package config

import "time"

const (
	defaultRemoteOpTimeout   = 250 * time.Millisecond
	defaultRemoteDialTimeout = 2 * time.Second
)

type RemoteCfg struct {
	// Addr is the Redis host:port.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// OpTimeout bounds every remote call. A timeout is treated the same as
	// a connection failure: the operation degrades to memory-only.
	OpTimeout time.Duration `yaml:"op_timeout"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (cfg *RemoteCfg) Enabled() bool {
	return cfg != nil
}
