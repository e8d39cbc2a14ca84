package disk

import (
	"time"

	"github.com/icsneo/icsnet"
)

// WriteLogicalDisk implements C7: read-modify-write with atomic
// compare-and-retry semantics, per spec §4.7.
//
// For each block touched by [pos, pos+amount), the block is first read
// atomically via readDriver (so a partial write can overlay new bytes onto
// the existing block contents), then written via
// writer.WriteLogicalDiskAligned. A WriteRetry outcome means the device
// detected a race; the loop re-reads and retries the same block with no
// progress recorded. timeout is decremented across both the read and the
// write of each block.
func WriteLogicalDisk(t Transactor, readDriver AlignedReader, writer AlignedWriter, report icsnet.Reporter, vsaOffset uint64, pos uint64, from []byte, amount uint64, timeout time.Duration) (uint64, bool) {
	if amount == 0 {
		return 0, true
	}

	_, idealBlockSize := writer.GetBlockSizeBounds()
	ideal := uint64(idealBlockSize)

	pos += vsaOffset
	startBlock := pos / ideal
	posWithinFirstBlock := pos % ideal

	blocks := amount / ideal
	if amount%ideal != 0 {
		blocks++
	}
	if blocks*ideal-posWithinFirstBlock < amount {
		blocks++
	}

	var transferred uint64
	var blocksProcessed uint64

	for blocksProcessed < blocks {
		if timeout < 0 {
			report(icsnet.Timeout, icsnet.Error)
			break
		}

		currentBlock := startBlock + blocksProcessed

		fromOffset := blocksProcessed * ideal
		if fromOffset < posWithinFirstBlock {
			fromOffset = 0
		} else {
			fromOffset -= posWithinFirstBlock
		}

		var posWithinCurrentBlock uint64
		if blocksProcessed == 0 {
			posWithinCurrentBlock = posWithinFirstBlock
		}
		curAmt := ideal - posWithinCurrentBlock
		if remaining := amount - transferred; curAmt > remaining {
			curAmt = remaining
		}

		reportFromRead := func(t icsnet.Type, s icsnet.Severity) {
			if t == icsnet.ParameterOutOfRange && blocksProcessed > 0 {
				t = icsnet.EOFReached
			}
			report(t, s)
		}

		start := time.Now()
		buf := make([]byte, ideal)
		gotLen, ok := ReadLogicalDisk(t, readDriver, reportFromRead, 0, currentBlock*ideal, buf, ideal, timeout)
		timeout -= time.Since(start)
		if !ok || gotLen != ideal {
			break // readLogicalDisk reports its own errors
		}

		useAlignedWriteBuffer := posWithinCurrentBlock != 0 || curAmt != ideal
		newBlock := buf
		if useAlignedWriteBuffer {
			aligned := append([]byte(nil), buf...)
			copy(aligned[posWithinCurrentBlock:posWithinCurrentBlock+curAmt], from[fromOffset:fromOffset+curAmt])
			newBlock = aligned
		} else {
			newBlock = from[fromOffset : fromOffset+curAmt]
		}

		start = time.Now()
		result := writer.WriteLogicalDiskAligned(t, report, currentBlock*ideal, buf, newBlock, timeout)
		timeout -= time.Since(start)

		if result.Outcome == WriteRetry {
			report(icsnet.AtomicOperationRetried, icsnet.Info)
			continue
		}

		if result.Outcome != WriteOK || result.N < curAmt {
			if timeout < 0 {
				report(icsnet.Timeout, icsnet.Error)
			} else if blocksProcessed > 0 || result.N != 0 {
				report(icsnet.EOFReached, icsnet.Error)
			} else {
				report(icsnet.ParameterOutOfRange, icsnet.Error)
			}
			break
		}

		if useAlignedWriteBuffer {
			report(icsnet.AtomicOperationCompletedNonatomically, NonatomicSeverity)
		}

		if result.N < curAmt {
			transferred += result.N
		} else {
			transferred += curAmt
		}
		blocksProcessed++
	}

	return transferred, transferred > 0
}
