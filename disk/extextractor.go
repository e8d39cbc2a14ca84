package disk

import (
	"encoding/binary"
	"time"

	"github.com/icsneo/icsnet"
)

// Extended-extractor wire constants, named for
// ExtExtractorDiskReadDriver in the source material this was distilled
// from: block bounds of (SectorSize, SectorSize*512), a 7-byte reply
// header, and a 1-second read cache.
const (
	extExtractorMaxSize      = SectorSize * 512
	extExtractorHeaderLength = 7
)

const (
	extExtractorCmdRead  byte = 0x01
	extExtractorCmdWrite byte = 0x02
)

// extExtractorReplyConflict marks a write reply that lost a race with
// another writer on the same block; WriteLogicalDiskAligned translates it
// to WriteRetry.
const extExtractorReplyConflict byte = 0xFF

// ExtExtractorReadDriver reads logical-disk blocks using the extended
// extractor command set, backed by a single-slot 1-second TTL cache keyed
// by aligned block position.
type ExtExtractorReadDriver struct {
	cache blockCache
}

func (d *ExtExtractorReadDriver) GetBlockSizeBounds() (uint32, uint32) {
	return SectorSize, extExtractorMaxSize
}

// ReadLogicalDiskAligned satisfies AlignedReader. pos must already be
// sector-aligned.
func (d *ExtExtractorReadDriver) ReadLogicalDiskAligned(t Transactor, report icsnet.Reporter, pos uint64, amount uint32, timeout time.Duration) ([]byte, bool) {
	if cached, ok := d.cache.get(pos, int(amount)); ok {
		return cached, true
	}

	req := buildExtExtractorRequest(extExtractorCmdRead, pos, amount, nil)
	resp, ok := t.Transact(req, timeout)
	if !ok {
		report(icsnet.FailedToRead, icsnet.Error)
		return nil, false
	}
	if len(resp) < extExtractorHeaderLength {
		report(icsnet.PacketDecodingError, icsnet.Error)
		return nil, false
	}

	data := append([]byte(nil), resp[extExtractorHeaderLength:]...)
	d.cache.put(pos, data)
	return data, true
}

// ExtExtractorWriteDriver writes logical-disk blocks using the extended
// extractor command set with atomic compare-and-retry semantics. Cache, if
// set, is invalidated on every successful write so the paired read driver
// never serves stale data.
type ExtExtractorWriteDriver struct {
	Cache *ExtExtractorReadDriver
}

func (d *ExtExtractorWriteDriver) GetBlockSizeBounds() (uint32, uint32) {
	return SectorSize, extExtractorMaxSize
}

// WriteLogicalDiskAligned satisfies AlignedWriter. oldBlock is unused by
// this driver (the device performs its own compare-and-swap against the
// block it currently holds); it is accepted to satisfy the interface and
// to allow other drivers to diff against it.
func (d *ExtExtractorWriteDriver) WriteLogicalDiskAligned(t Transactor, report icsnet.Reporter, pos uint64, oldBlock, newBlock []byte, timeout time.Duration) WriteResult {
	req := buildExtExtractorRequest(extExtractorCmdWrite, pos, uint32(len(newBlock)), newBlock)
	resp, ok := t.Transact(req, timeout)
	if !ok {
		report(icsnet.FailedToWrite, icsnet.Error)
		return WriteResult{Outcome: WriteErr}
	}
	if len(resp) < extExtractorHeaderLength {
		report(icsnet.PacketDecodingError, icsnet.Error)
		return WriteResult{Outcome: WriteErr}
	}
	if resp[0] == extExtractorReplyConflict {
		return WriteResult{Outcome: WriteRetry}
	}

	if d.Cache != nil {
		d.Cache.cache.invalidate()
	}
	return WriteResult{Outcome: WriteOK, N: uint64(len(newBlock))}
}

func buildExtExtractorRequest(cmd byte, pos uint64, amount uint32, payload []byte) []byte {
	req := make([]byte, 0, 1+8+4+len(payload))
	req = append(req, cmd)
	var posBuf [8]byte
	binary.LittleEndian.PutUint64(posBuf[:], pos)
	req = append(req, posBuf[:]...)
	var amtBuf [4]byte
	binary.LittleEndian.PutUint32(amtBuf[:], amount)
	req = append(req, amtBuf[:]...)
	req = append(req, payload...)
	return req
}
