package icsnet

import (
	"bytes"
	"encoding/binary"
)

// transactFrameHeaderSize is the on-wire header prefixed to every
// disk-protocol transaction body routed through Communication.Transact: a
// one-byte tag identifying the body as a disk reply (see diskFrameMagic)
// plus a 4-byte little-endian correlation id matching it to the waiting
// caller. Adapted from the teacher's generic length+type frame header into
// this library's narrower disk-correlation framing.
const transactFrameHeaderSize = 1 + 4

// buildTransactFrame writes tag and id followed by payload into buf.
func buildTransactFrame(buf *bytes.Buffer, tag byte, id uint32, payload []byte) {
	buf.Grow(transactFrameHeaderSize + len(payload))
	buf.WriteByte(tag)
	var idBuf [4]byte
	binary.LittleEndian.PutUint32(idBuf[:], id)
	buf.Write(idBuf[:])
	buf.Write(payload)
}

// parseTransactFrame splits a decoded packetizer body into its tag,
// correlation id, and payload. ok is false if body is too short to carry
// the header.
func parseTransactFrame(body []byte) (tag byte, id uint32, payload []byte, ok bool) {
	if len(body) < transactFrameHeaderSize {
		return 0, 0, nil, false
	}
	return body[0], binary.LittleEndian.Uint32(body[1:5]), body[transactFrameHeaderSize:], true
}
