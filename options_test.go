package icsnet

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestApplyOptionsOverridesDefaults(t *testing.T) {
	cfg := ApplyOptions(
		WithEventRingCapacity(64),
		WithPollIntervals(5*time.Millisecond, 50*time.Millisecond),
		WithSubscriberQueueDepth(8),
		WithDiskTimeout(2*time.Second),
	)

	if cfg.EventRingCapacity() != 64 {
		t.Fatalf("got %d, want 64", cfg.EventRingCapacity())
	}
	if cfg.DiskTimeout() != 2*time.Second {
		t.Fatalf("got %v, want 2s", cfg.DiskTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected overridden config to validate, got %v", err)
	}
}

func TestApplyOptionsIgnoresNonPositiveOverrides(t *testing.T) {
	cfg := ApplyOptions(WithEventRingCapacity(-5), WithDiskTimeout(0))
	if cfg.EventRingCapacity() != DefaultEventRingCapacity {
		t.Fatalf("got %d, want default %d preserved", cfg.EventRingCapacity(), DefaultEventRingCapacity)
	}
	if cfg.DiskTimeout() != DefaultDiskTimeout {
		t.Fatalf("got %v, want default %v preserved", cfg.DiskTimeout(), DefaultDiskTimeout)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.eventRingCapacity = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v, want ErrInvalidConfig", err)
	}
}

func TestConfigCommunicationOptionsAppliesPollAndQueueDepth(t *testing.T) {
	cfg := ApplyOptions(WithPollIntervals(time.Millisecond, 10*time.Millisecond), WithSubscriberQueueDepth(4))
	opts := cfg.CommunicationOptions()
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2", len(opts))
	}

	c := &Communication{}
	for _, o := range opts {
		o(c)
	}
	if c.queueDepth != 4 {
		t.Fatalf("got queueDepth %d, want 4", c.queueDepth)
	}
	if c.poll == nil || c.poll.Fast != time.Millisecond || c.poll.Steady != 10*time.Millisecond {
		t.Fatalf("got poll %+v, want Fast 1ms, Steady 10ms", c.poll)
	}
}
