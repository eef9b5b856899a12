// Package timeouts holds the deadlines applied to store and cache calls.
//
// Handlers derive a context from the request with one of the tiers below:
//   - Ping: health checks against MongoDB and the cache
//   - Short: single-document reads and writes
//   - Medium: paged listings, aggregations, grading
//   - Long: transactional composite writes (quiz authoring, checkout)
//   - Batch: exports and CLI imports
//
// Values come from configuration at startup through Configure.
package timeouts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config holds one duration per tier. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Defaults is the configuration in effect before Configure is called.
var Defaults = Config{
	Ping:   2 * time.Second,
	Short:  5 * time.Second,
	Medium: 10 * time.Second,
	Long:   30 * time.Second,
	Batch:  2 * time.Minute,
}

var current atomic.Pointer[Config]

func init() { Reset() }

func load() *Config { return current.Load() }

func Ping() time.Duration   { return load().Ping }
func Short() time.Duration  { return load().Short }
func Medium() time.Duration { return load().Medium }
func Long() time.Duration   { return load().Long }
func Batch() time.Duration  { return load().Batch }

// Configure overlays the non-zero fields of cfg on the current values.
func Configure(cfg Config) {
	next := *load()
	if cfg.Ping > 0 {
		next.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		next.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		next.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		next.Long = cfg.Long
	}
	if cfg.Batch > 0 {
		next.Batch = cfg.Batch
	}
	current.Store(&next)
}

// Reset restores Defaults. Tests use it.
func Reset() {
	d := Defaults
	current.Store(&d)
}

// Current returns a copy of the values in effect.
func Current() Config { return *load() }

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit, naming the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "checkout")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
