package stratacache

import (
	"time"

	"github.com/strata-cache/go-strata-cache/model"
)

// Option customizes a single cache operation.
type Option func(*model.Options)

// WithTTL overrides the configured default TTL for this write. A negative
// TTL pins the item: it never expires.
func WithTTL(ttl time.Duration) Option {
	return func(o *model.Options) { o.TTL = ttl }
}

// WithTags attaches invalidation tags to the written item.
func WithTags(tags ...string) Option {
	return func(o *model.Options) { o.Tags = tags }
}

// WithCompress forces compression on or off for this write, overriding the
// size threshold decision.
func WithCompress(compress bool) Option {
	return func(o *model.Options) { o.Compress = &compress }
}

// WithPriority sets the eviction priority of the written item.
func WithPriority(p model.Priority) Option {
	return func(o *model.Options) { o.Priority = p }
}

// WithSkipMemory excludes the memory tier from this operation.
func WithSkipMemory() Option {
	return func(o *model.Options) { o.SkipMemory = true }
}

// WithSkipRemote excludes the remote tier from this operation.
func WithSkipRemote() Option {
	return func(o *model.Options) { o.SkipRemote = true }
}

func resolveOptions(opts []Option) model.Options {
	o := model.Options{Priority: model.PriorityNormal}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
