package disk

import (
	"time"

	"github.com/icsneo/icsnet"
)

// ReadLogicalDisk implements C6: the generic, driver-agnostic byte-range
// read algorithm layered over any AlignedReader, per spec §4.6.
//
// pos is translated by vsaOffset before block math. Blocks covering
// [pos, pos+amount) are read one at a time at the driver's ideal block
// size; a short read at any block after the first ends the read
// successfully with whatever was copied so far, while a short read at the
// very first block is a failure (ParameterOutOfRange). A failed aligned read
// ends the read with the driver's own report and nothing added here. timeout
// is decremented by the elapsed wall time of each aligned read; on
// exhaustion the read stops and reports Timeout.
func ReadLogicalDisk(t Transactor, driver AlignedReader, report icsnet.Reporter, vsaOffset uint64, pos uint64, into []byte, amount uint64, timeout time.Duration) (uint64, bool) {
	if amount == 0 {
		return 0, true
	}
	_, idealBlockSize := driver.GetBlockSizeBounds()
	ideal := uint64(idealBlockSize)

	pos += vsaOffset
	startBlock := pos / ideal
	posWithinFirstBlock := pos % ideal

	var transferred uint64
	var blockIndex uint64

	for transferred < amount {
		if timeout < 0 {
			report(icsnet.Timeout, icsnet.Error)
			break
		}

		currentBlock := startBlock + blockIndex
		var posWithinCurrentBlock uint64
		if blockIndex == 0 {
			posWithinCurrentBlock = posWithinFirstBlock
		}
		curAmt := ideal - posWithinCurrentBlock
		if remaining := amount - transferred; curAmt > remaining {
			curAmt = remaining
		}

		start := time.Now()
		data, ok := driver.ReadLogicalDiskAligned(t, report, currentBlock*ideal, idealBlockSize, timeout)
		timeout -= time.Since(start)
		if !ok {
			break // ReadLogicalDiskAligned reports its own errors
		}

		got := uint64(len(data))
		if blockIndex == 0 && got < ideal {
			report(icsnet.ParameterOutOfRange, icsnet.Error)
			break
		}
		avail := got - posWithinCurrentBlock
		if avail > curAmt {
			avail = curAmt
		}
		transferred += uint64(copy(into[transferred:transferred+avail], data[posWithinCurrentBlock:posWithinCurrentBlock+avail]))

		if got < ideal {
			break
		}
		blockIndex++
	}

	return transferred, transferred > 0
}
