package icsnet

import (
	"errors"
	"time"
)

const (
	// DefaultFastPoll is the polling interval used during activity by the
	// reader/writer tasks' AdaptivePoll (backoff on an idle driver, retry on
	// a full write queue).
	DefaultFastPoll = 10 * time.Millisecond
	// DefaultDataPoll is the steady-state polling interval once a device has
	// been idle for a while. Adaptive polling backs off exponentially from
	// FastPoll to DataPoll.
	DefaultDataPoll = 100 * time.Millisecond

	// DefaultDiskTimeout bounds a DiskRead/DiskWrite call when the caller
	// doesn't specify one.
	DefaultDiskTimeout = 5 * time.Second
)

// ErrInvalidConfig is returned by Config.Validate when the assembled
// configuration is not usable.
var ErrInvalidConfig = errors.New("icsnet: invalid configuration")

// Config holds library-wide defaults applied when a Library opens a device,
// per SPEC_FULL.md's ambient "functional options" configuration layer —
// the same Option/Config/Validate/defaultConfig shape as the teacher's own
// options.go, with Azure-bootstrap fields replaced by this library's own
// tunables (event ring sizing, poll cadence, disk timeout).
type Config struct {
	eventRingCapacity    int
	fastPoll             time.Duration
	dataPoll             time.Duration
	subscriberQueueDepth int
	diskTimeout          time.Duration
}

// Validate reports whether c is internally consistent.
func (c *Config) Validate() error {
	if c.eventRingCapacity <= 0 {
		return ErrInvalidConfig
	}
	if c.fastPoll <= 0 || c.dataPoll < c.fastPoll {
		return ErrInvalidConfig
	}
	if c.subscriberQueueDepth <= 0 {
		return ErrInvalidConfig
	}
	if c.diskTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// defaultConfig returns a Config with library defaults.
func defaultConfig() *Config {
	return &Config{
		eventRingCapacity:    DefaultEventRingCapacity,
		fastPoll:             DefaultFastPoll,
		dataPoll:             DefaultDataPoll,
		subscriberQueueDepth: DefaultSubscriberQueueDepth,
		diskTimeout:          DefaultDiskTimeout,
	}
}

// Option configures a Config via the functional-options pattern.
type Option func(*Config)

// ApplyOptions builds a runtime Config by layering opts on top of the
// library defaults. Callers that assemble their own Communication directly
// (rather than through a Library) can use this to derive CommunicationOptions
// consistent with the same Config surface; see Config.CommunicationOptions.
func ApplyOptions(opts ...Option) *Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithEventRingCapacity overrides the number of events retained per
// per-device (or global) event ring before overflow eviction kicks in.
func WithEventRingCapacity(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.eventRingCapacity = n
		}
	}
}

// WithPollIntervals overrides the reader/writer tasks' AdaptivePoll bounds.
func WithPollIntervals(fast, steady time.Duration) Option {
	return func(c *Config) {
		if fast > 0 {
			c.fastPoll = fast
		}
		if steady > 0 {
			c.dataPoll = steady
		}
	}
}

// WithSubscriberQueueDepth overrides the per-subscriber dispatch queue
// depth (see Communication.Subscribe).
func WithSubscriberQueueDepth(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.subscriberQueueDepth = n
		}
	}
}

// WithDiskTimeout overrides the default timeout used by DiskRead/DiskWrite
// when the caller passes zero.
func WithDiskTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.diskTimeout = d
		}
	}
}

// CommunicationOptions translates cfg's poll and subscriber-queue settings
// into CommunicationOptions, so a Library can configure a Communication
// from the same Config it was built with.
func (c *Config) CommunicationOptions() []CommunicationOption {
	return []CommunicationOption{
		WithPoll(c.fastPoll, c.dataPoll),
		WithQueueDepth(c.subscriberQueueDepth),
	}
}

// DiskTimeout returns the configured default disk I/O timeout.
func (c *Config) DiskTimeout() time.Duration { return c.diskTimeout }

// EventRingCapacity returns the configured per-ring event capacity.
func (c *Config) EventRingCapacity() int { return c.eventRingCapacity }
