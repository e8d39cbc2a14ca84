package icsnet

import "encoding/binary"

// Ethernet tunnel wire constants, see spec §3/§6.
const (
	EthernetTunnelEthertype uint16 = 0xCAB1
	ethernetTunnelVersion   byte   = 0x01
	// ethernetMaxPayload is the maximum packetizer-frame payload carried by a
	// single L2 frame.
	ethernetMaxPayload = 1490
	ethernetHeaderSize  = 6 + 6 + 2 + 4 + 2 + 2 + 1 + 1 // 24 bytes
)

var ethernetTunnelMagic = [4]byte{0xAA, 0xAA, 0x55, 0x55}

// piece flags: 2-bit field marking a payload's position within a logical
// packetizer frame.
const (
	pieceMid         byte = 0b00
	pieceFirst       byte = 0b01
	pieceLast        byte = 0b10
	pieceFirstAndLast byte = 0b11
)

// EthernetPacketizer fragments and reassembles packetizer frames across a
// custom L2 tunnel protocol. See spec §3/§4.3. It is single-owner: callers
// (Communication) must only touch it from one goroutine at a time (the
// reader or the writer, never both concurrently).
type EthernetPacketizer struct {
	DeviceMAC [6]byte
	HostMAC   [6]byte

	report Reporter

	pending [][]byte // whole packetizer frames queued by inputDown
	seq     uint16

	// reassembly state for the upward path
	reassembling bool
	reassembly   []byte
	completed    [][]byte
}

// NewEthernetPacketizer builds an EthernetPacketizer that reports
// reassembly faults through report.
func NewEthernetPacketizer(deviceMAC, hostMAC [6]byte, report Reporter) *EthernetPacketizer {
	if report == nil {
		report = func(Type, Severity) {}
	}
	return &EthernetPacketizer{DeviceMAC: deviceMAC, HostMAC: hostMAC, report: report}
}

// InputDown queues a whole packetizer frame for downward (host-to-device)
// transmission. The caller guarantees frame is a complete, whole unit.
func (p *EthernetPacketizer) InputDown(frame []byte) {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	p.pending = append(p.pending, cp)
}

// OutputDown drains the pending queue into one or more L2 frames using
// greedy packing: frames are bundled together while they fit, and any
// single frame larger than the MTU is split into first/mid/last pieces that
// all share one sequence number. The sequence counter increments exactly
// once per "batch" (one greedy run that starts a fresh L2 frame and ends
// either because the queue emptied or because the next queued frame no
// longer fits), matching the reference implementation's test suite exactly
// — see SPEC_FULL.md's C3 section for the derivation.
func (p *EthernetPacketizer) OutputDown() [][]byte {
	var out [][]byte

	for len(p.pending) > 0 {
		seq := p.seq
		var cur []byte
		split := false
		freshBatch := true

		for len(p.pending) > 0 {
			next := p.pending[0]

			if freshBatch && len(next) > ethernetMaxPayload {
				// This frame alone exceeds the MTU: split it into first/mid
				// pieces at the current sequence number, then let the
				// remainder become the batch's running tail, which the
				// greedy loop below may still grow before it's emitted as
				// the final (last) piece.
				split = true
				rest := next
				firstChunk := true
				for len(rest) > ethernetMaxPayload {
					chunk := rest[:ethernetMaxPayload]
					rest = rest[ethernetMaxPayload:]
					flag := pieceMid
					if firstChunk {
						flag = pieceFirst
						firstChunk = false
					}
					out = append(out, p.buildFrame(seq, flag, chunk))
				}
				cur = append(cur, rest...)
				p.pending = p.pending[1:]
				freshBatch = false
				continue
			}

			if len(cur)+len(next) > ethernetMaxPayload {
				break
			}
			cur = append(cur, next...)
			p.pending = p.pending[1:]
			freshBatch = false
		}

		flag := pieceFirstAndLast
		if split {
			flag = pieceLast
		}
		out = append(out, p.buildFrame(seq, flag, cur))
		p.seq++
	}

	return out
}

func (p *EthernetPacketizer) buildFrame(seq uint16, flags byte, payload []byte) []byte {
	out := make([]byte, 0, ethernetHeaderSize+len(payload))
	out = append(out, p.DeviceMAC[:]...)
	out = append(out, p.HostMAC[:]...)
	var ethertype [2]byte
	binary.BigEndian.PutUint16(ethertype[:], EthernetTunnelEthertype)
	out = append(out, ethertype[:]...)
	out = append(out, ethernetTunnelMagic[:]...)
	var lenBuf, seqBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(seqBuf[:], seq)
	out = append(out, lenBuf[:]...)
	out = append(out, seqBuf[:]...)
	out = append(out, flags, ethernetTunnelVersion)
	out = append(out, payload...)
	return out
}

// InputUp verifies and reassembles one received L2 frame. Invalid frames
// (wrong destination, ethertype, magic, version, or oversized length) are
// silently dropped. Out-of-sequence continuation pieces (a mid/last piece
// with no preceding first) are dropped with a PacketDecodingError and
// reassembly resumes on the next valid first piece.
func (p *EthernetPacketizer) InputUp(l2 []byte) {
	if len(l2) < ethernetHeaderSize {
		return
	}
	dst := l2[0:6]
	for i := 0; i < 6; i++ {
		if dst[i] != p.HostMAC[i] {
			return
		}
	}
	if binary.BigEndian.Uint16(l2[12:14]) != EthernetTunnelEthertype {
		return
	}
	if l2[14] != ethernetTunnelMagic[0] || l2[15] != ethernetTunnelMagic[1] ||
		l2[16] != ethernetTunnelMagic[2] || l2[17] != ethernetTunnelMagic[3] {
		return
	}
	length := binary.LittleEndian.Uint16(l2[18:20])
	flags := l2[22]
	version := l2[23]
	if version != ethernetTunnelVersion || length > ethernetMaxPayload {
		return
	}
	if len(l2) < ethernetHeaderSize+int(length) {
		return
	}
	payload := l2[ethernetHeaderSize : ethernetHeaderSize+int(length)]

	switch flags & 0b11 {
	case pieceFirstAndLast:
		p.reassembly = append([]byte(nil), payload...)
		p.reassembling = false
		p.completed = append(p.completed, p.reassembly)
	case pieceFirst:
		p.reassembly = append([]byte(nil), payload...)
		p.reassembling = true
	case pieceMid:
		if !p.reassembling {
			p.report(PacketDecodingError, Error)
			return
		}
		p.reassembly = append(p.reassembly, payload...)
	case pieceLast:
		if !p.reassembling {
			p.report(PacketDecodingError, Error)
			return
		}
		p.reassembly = append(p.reassembly, payload...)
		p.reassembling = false
		p.completed = append(p.completed, p.reassembly)
	}
}

// OutputUp drains every fully reassembled logical frame produced by prior
// InputUp calls.
func (p *EthernetPacketizer) OutputUp() [][]byte {
	out := p.completed
	p.completed = nil
	return out
}
