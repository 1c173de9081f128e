package remote

import (
	"context"
	"time"
)

// NoOpTier serves the disabled remote tier: every lookup misses and every
// write is declined, so the manager naturally degrades to memory-only.
type NoOpTier struct{}

func (t *NoOpTier) Get(context.Context, string) ([]byte, bool)            { return nil, false }
func (t *NoOpTier) Set(context.Context, string, []byte, time.Duration) bool { return false }
func (t *NoOpTier) Delete(context.Context, string) bool                   { return false }
func (t *NoOpTier) Exists(context.Context, string) bool                   { return false }
func (t *NoOpTier) Clear(context.Context) bool                            { return false }
func (t *NoOpTier) IsConnected(context.Context) bool                      { return false }
func (t *NoOpTier) Enabled() bool                                         { return false }
func (t *NoOpTier) Close() error                                          { return nil }
