package icsnet

import "testing"

func TestDefaultMetricsCounters(t *testing.T) {
	m := NewDefaultMetrics()
	m.IncrementReadTransaction()
	m.IncrementReadTransaction()
	m.IncrementWriteTransaction()
	m.IncrementBytesReceived(10)
	m.IncrementBytesSent(5)

	if m.GetReadTransactionCount() != 2 {
		t.Fatalf("got %d, want 2", m.GetReadTransactionCount())
	}
	if m.GetWriteTransactionCount() != 1 {
		t.Fatalf("got %d, want 1", m.GetWriteTransactionCount())
	}
	if m.GetBytesReceived() != 10 {
		t.Fatalf("got %d, want 10", m.GetBytesReceived())
	}
	if m.GetBytesSent() != 5 {
		t.Fatalf("got %d, want 5", m.GetBytesSent())
	}
}

func TestMetricsDriverCountsOnlyOnSuccess(t *testing.T) {
	m := NewDefaultMetrics()
	inner := &fakeDriver{openOK: true, closeOK: true}
	d := newMetricsDriver(inner, m)

	d.WriteInternal([]byte{1, 2, 3})
	if m.GetWriteTransactionCount() != 1 || m.GetBytesSent() != 3 {
		t.Fatalf("got writes=%d bytesSent=%d, want 1/3", m.GetWriteTransactionCount(), m.GetBytesSent())
	}

	// ReadChunk on the fake driver always reports !ok, so no counters move.
	d.ReadChunk()
	if m.GetReadTransactionCount() != 0 || m.GetBytesReceived() != 0 {
		t.Fatalf("expected a failed read to not increment counters")
	}
}

type fakeCountingReaderDriver struct {
	fakeDriver
	chunk []byte
}

func (d *fakeCountingReaderDriver) ReadChunk() ([]byte, bool) { return d.chunk, true }

func TestMetricsDriverCountsSuccessfulRead(t *testing.T) {
	m := NewDefaultMetrics()
	inner := &fakeCountingReaderDriver{chunk: []byte{1, 2, 3, 4}}
	d := newMetricsDriver(inner, m)

	chunk, ok := d.ReadChunk()
	if !ok || len(chunk) != 4 {
		t.Fatalf("got (%v, %v)", chunk, ok)
	}
	if m.GetReadTransactionCount() != 1 || m.GetBytesReceived() != 4 {
		t.Fatalf("got reads=%d bytesReceived=%d, want 1/4", m.GetReadTransactionCount(), m.GetBytesReceived())
	}
}
