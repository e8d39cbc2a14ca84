package icsnet

import "testing"

func TestEventManagerAddAndGet(t *testing.T) {
	m := NewEventManager(10)
	m.Add("", InvalidNeoDevice, Error, "")
	m.Add("", Timeout, Warning, "ABC123")

	events := m.Get("", AnyFilter(), 0, false)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestEventManagerPerThreadIsolation(t *testing.T) {
	m := NewEventManager(10)
	m.Add("reader", FailedToRead, Error, "SER1")
	m.Add("writer", FailedToWrite, Error, "SER1")
	m.Add("", Timeout, Warning, "") // global ring

	readerEvents := m.Get("reader", AnyFilter(), 0, false)
	if len(readerEvents) != 1 || readerEvents[0].Type != FailedToRead {
		t.Fatalf("got %v, want exactly one FailedToRead", readerEvents)
	}

	writerEvents := m.Get("writer", AnyFilter(), 0, false)
	if len(writerEvents) != 1 || writerEvents[0].Type != FailedToWrite {
		t.Fatalf("got %v, want exactly one FailedToWrite", writerEvents)
	}

	globalEvents := m.Get("", AnyFilter(), 0, false)
	if len(globalEvents) != 1 || globalEvents[0].Type != Timeout {
		t.Fatalf("got %v, want exactly one Timeout", globalEvents)
	}
}

func TestEventManagerForgetDropsThreadRing(t *testing.T) {
	m := NewEventManager(10)
	m.Add("reader", FailedToRead, Error, "")
	m.Forget("reader")

	// A fresh ring is created on next use; the old event is gone.
	events := m.Get("reader", AnyFilter(), 0, false)
	if len(events) != 0 {
		t.Fatalf("got %v, want empty ring after Forget", events)
	}
}

func TestEventManagerGetDrainRemovesMatched(t *testing.T) {
	m := NewEventManager(10)
	m.Add("", Timeout, Error, "")
	m.Add("", PacketChecksumError, Warning, "")

	drained := m.Get("", Filter{Type: Timeout, Severity: AnySeverity}, 0, true)
	if len(drained) != 1 {
		t.Fatalf("got %d drained, want 1", len(drained))
	}

	remaining := m.Get("", AnyFilter(), 0, false)
	if len(remaining) != 1 || remaining[0].Type != PacketChecksumError {
		t.Fatalf("got %v, want only the undrained PacketChecksumError", remaining)
	}
}

func TestEventManagerGetLastError(t *testing.T) {
	m := NewEventManager(10)
	m.Add("", Timeout, Warning, "")
	m.Add("", FailedToRead, Error, "")
	m.Add("", PacketChecksumError, Error, "")

	last, ok := m.GetLastError("")
	if !ok || last.Type != PacketChecksumError {
		t.Fatalf("got (%v, %v), want PacketChecksumError", last, ok)
	}

	// GetLastError removes what it returns.
	second, ok := m.GetLastError("")
	if !ok || second.Type != FailedToRead {
		t.Fatalf("got (%v, %v), want FailedToRead", second, ok)
	}

	_, ok = m.GetLastError("")
	if ok {
		t.Fatalf("expected no more Error-severity events")
	}
}

func TestEventManagerDowngradeErrors(t *testing.T) {
	m := NewEventManager(10)
	m.Add("", Timeout, Error, "SER1")
	m.Add("", FailedToRead, Error, "SER2")

	m.DowngradeErrors("", Filter{Type: Timeout, Severity: AnySeverity})

	_, ok := m.GetLastError("")
	if !ok {
		t.Fatalf("expected FailedToRead to still be an Error")
	}

	events := m.Get("", AnyFilter(), 0, false)
	for _, e := range events {
		if e.Type == Timeout && e.Severity != Warning {
			t.Fatalf("got Timeout severity %v, want Warning after downgrade", e.Severity)
		}
	}
}

// TooManyEvents overflow: filling a ring past capacity synthesizes exactly
// one TooManyEvents event per overflow episode, and the event that triggered
// the overflow is itself dropped in favor of the marker.
func TestEventManagerOverflowSynthesizesOnce(t *testing.T) {
	m := NewEventManager(3)
	m.Add("", InvalidNeoDevice, Error, "")   // 1
	m.Add("", RequiredParameterNull, Error, "") // 2
	m.Add("", BufferInsufficient, Error, "")    // 3, ring full
	m.Add("", OutputTruncated, Error, "")        // overflow: synthesizes TooManyEvents instead

	events := m.Get("", AnyFilter(), 0, false)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (ring capacity)", len(events))
	}

	overflowCount := 0
	for _, e := range events {
		if e.Type == TooManyEvents {
			overflowCount++
		}
		if e.Type == OutputTruncated {
			t.Fatalf("expected the overflow-triggering event to be dropped, but found it")
		}
	}
	if overflowCount != 1 {
		t.Fatalf("got %d TooManyEvents markers, want exactly 1", overflowCount)
	}

	// A subsequent add succeeds normally (no repeated marker).
	m.Add("", ParameterOutOfRange, Error, "")
	events = m.Get("", AnyFilter(), 0, false)
	overflowCount = 0
	foundNext := false
	for _, e := range events {
		if e.Type == TooManyEvents {
			overflowCount++
		}
		if e.Type == ParameterOutOfRange {
			foundNext = true
		}
	}
	if overflowCount != 1 {
		t.Fatalf("got %d TooManyEvents markers after recovery, want 1 (no duplicate)", overflowCount)
	}
	if !foundNext {
		t.Fatalf("expected ParameterOutOfRange to be recorded once the ring recovered")
	}
}

func TestEventManagerReporterCapability(t *testing.T) {
	m := NewEventManager(10)
	report := m.Reporter("dev-thread", "SER9")
	report(DeviceDisconnected, Error)

	events := m.Get("dev-thread", AnyFilter(), 0, false)
	if len(events) != 1 || events[0].Type != DeviceDisconnected || events[0].Serial != "SER9" {
		t.Fatalf("got %v, want one DeviceDisconnected event for SER9", events)
	}
}

func TestFilterMatchBySerial(t *testing.T) {
	m := NewEventManager(10)
	m.Add("", Timeout, Error, "SERIAL-A")
	m.Add("", Timeout, Error, "SERIAL-B")

	matched := m.Get("", Filter{Type: Any, Severity: AnySeverity, Serial: "SERIAL-A"}, 0, false)
	if len(matched) != 1 || matched[0].Serial != "SERIAL-A" {
		t.Fatalf("got %v, want exactly the SERIAL-A event", matched)
	}
}
