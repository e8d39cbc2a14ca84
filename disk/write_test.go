package disk

import (
	"reflect"
	"testing"
	"time"

	"github.com/icsneo/icsnet"
)

type fakeWrite struct {
	pos  uint64
	data []byte
}

// fakeAlignedWriter records every committed write and can be told to answer
// WriteRetry a fixed number of times for a given block position before
// succeeding, simulating a device-side compare-and-swap race.
type fakeAlignedWriter struct {
	sector, ideal  uint32
	retryRemaining map[uint64]int
	writes         []fakeWrite
}

func (w *fakeAlignedWriter) GetBlockSizeBounds() (uint32, uint32) { return w.sector, w.ideal }

func (w *fakeAlignedWriter) WriteLogicalDiskAligned(t Transactor, report icsnet.Reporter, pos uint64, oldBlock, newBlock []byte, timeout time.Duration) WriteResult {
	if w.retryRemaining[pos] > 0 {
		w.retryRemaining[pos]--
		return WriteResult{Outcome: WriteRetry}
	}
	w.writes = append(w.writes, fakeWrite{pos: pos, data: append([]byte(nil), newBlock...)})
	return WriteResult{Outcome: WriteOK, N: uint64(len(newBlock))}
}

func applyWrites(base []byte, writes []fakeWrite) []byte {
	out := append([]byte(nil), base...)
	for _, w := range writes {
		copy(out[w.pos:], w.data)
	}
	return out
}

func TestWriteLogicalDiskMultiBlockAligned(t *testing.T) {
	backing := make([]byte, 32)
	reader := &fakeAlignedReader{sector: 16, ideal: 16, data: backing}
	writer := &fakeAlignedWriter{sector: 16, ideal: 16, retryRemaining: map[uint64]int{}}
	report, reports := collectDiskReports()

	from := make([]byte, 32)
	for i := range from {
		from[i] = 0xAA
	}

	n, ok := WriteLogicalDisk(nil, reader, writer, report, 0, 0, from, 32, time.Second)
	if !ok {
		t.Fatalf("expected write to succeed")
	}
	if n != 32 {
		t.Fatalf("got n=%d, want 32", n)
	}

	got := applyWrites(backing, writer.writes)
	if !reflect.DeepEqual(got, from) {
		t.Fatalf("got %v, want %v", got, from)
	}

	for _, typ := range *reports {
		if typ == icsnet.AtomicOperationCompletedNonatomically {
			t.Fatalf("a fully block-aligned write should not report nonatomic completion")
		}
	}
}

func TestWriteLogicalDiskUnalignedPartialBlockReportsNonatomic(t *testing.T) {
	backing := make([]byte, 32)
	reader := &fakeAlignedReader{sector: 16, ideal: 16, data: backing}
	writer := &fakeAlignedWriter{sector: 16, ideal: 16, retryRemaining: map[uint64]int{}}
	report, reports := collectDiskReports()

	from := []byte{1, 2, 3, 4} // 4 bytes at an offset within a 16-byte block
	n, ok := WriteLogicalDisk(nil, reader, writer, report, 0, 4, from, 4, time.Second)
	if !ok || n != 4 {
		t.Fatalf("got (%d, %v), want (4, true)", n, ok)
	}

	found := false
	for _, typ := range *reports {
		if typ == icsnet.AtomicOperationCompletedNonatomically {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a partial-block write to report AtomicOperationCompletedNonatomically, got %v", *reports)
	}
}

func TestWriteLogicalDiskRetryThenSucceeds(t *testing.T) {
	backing := make([]byte, 16)
	reader := &fakeAlignedReader{sector: 16, ideal: 16, data: backing}
	writer := &fakeAlignedWriter{sector: 16, ideal: 16, retryRemaining: map[uint64]int{0: 2}}
	report, reports := collectDiskReports()

	from := make([]byte, 16)
	for i := range from {
		from[i] = 0x55
	}

	n, ok := WriteLogicalDisk(nil, reader, writer, report, 0, 0, from, 16, time.Second)
	if !ok || n != 16 {
		t.Fatalf("got (%d, %v), want (16, true) after retries resolve", n, ok)
	}

	retryCount := 0
	for _, typ := range *reports {
		if typ == icsnet.AtomicOperationRetried {
			retryCount++
		}
	}
	if retryCount != 2 {
		t.Fatalf("got %d AtomicOperationRetried reports, want 2", retryCount)
	}
	if len(writer.writes) != 1 {
		t.Fatalf("got %d committed writes, want exactly 1 (after the retries settle)", len(writer.writes))
	}
}

func TestWriteLogicalDiskZeroAmountNoOp(t *testing.T) {
	reader := &fakeAlignedReader{sector: 16, ideal: 16, data: make([]byte, 16)}
	writer := &fakeAlignedWriter{sector: 16, ideal: 16, retryRemaining: map[uint64]int{}}
	n, ok := WriteLogicalDisk(nil, reader, writer, func(icsnet.Type, icsnet.Severity) {}, 0, 0, nil, 0, time.Second)
	if !ok || n != 0 {
		t.Fatalf("got (%d, %v), want (0, true)", n, ok)
	}
}
