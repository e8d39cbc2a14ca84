package icsnet

import (
	"encoding/binary"
	"time"
)

// DeviceCapabilities parameterizes an Encoder/Decoder pair for one connected
// device. Extended, beyond the booleans spec.md names, with VSAOffset and
// ProductID, mirroring how the device-tree in the source material wires
// concrete per-device constants into the shared Communication/codec trio.
type DeviceCapabilities struct {
	SupportCANFD bool
	// TimestampResolution is the duration represented by one on-wire tick;
	// the multiplier applied when converting ticks to/from time.Time.
	TimestampResolution time.Duration
	VSAOffset           uint64
	ProductID           uint16
}

// NetworkType identifies the logical bus a Message belongs to.
type NetworkType uint8

const (
	NetworkCAN NetworkType = iota
	NetworkCANFD
	NetworkLIN
	NetworkEthernet
)

const (
	codecFlagRTR byte = 1 << iota
	codecFlagFD
)

// codecHeaderLen is the fixed portion of an encoded packet body: network(1)
// + arbID(4) + flags(1) + timestamp ticks(8) + dlc(1).
const codecHeaderLen = 1 + 4 + 1 + 8 + 1

const (
	maxCANDataLength   = 8
	maxCANFDDataLength = 64
)

// Message is a single structured CAN/CAN-FD/LIN frame exchanged with a
// device, decoupled from the packetizer-frame and Ethernet-tunnel framing
// that carries it on the wire.
type Message struct {
	Network   NetworkType
	ArbID     uint32
	Data      []byte
	Timestamp time.Time
	RTR       bool
}

// Encoder maps a structured Message to a packetizer-frame body. It is a
// pure function of its capabilities plus the message; see spec §4.4.
type Encoder struct {
	Capabilities DeviceCapabilities
	report       Reporter
}

// NewEncoder builds an Encoder reporting formatting faults through report.
func NewEncoder(caps DeviceCapabilities, report Reporter) *Encoder {
	if report == nil {
		report = func(Type, Severity) {}
	}
	return &Encoder{Capabilities: caps, report: report}
}

// Encode serializes msg into a packet body, or reports a fault and returns
// false. Encoder failures are reported as the most specific taxonomy entry
// available (CANFDNotSupported, RTRNotSupported, MessageMaxLengthExceeded)
// rather than a blanket MessageFormattingError, matching how the source
// material's event taxonomy distinguishes these cases.
func (e *Encoder) Encode(msg Message) ([]byte, bool) {
	if msg.Network == NetworkCANFD && !e.Capabilities.SupportCANFD {
		e.report(CANFDNotSupported, Error)
		return nil, false
	}
	if msg.RTR && msg.Network == NetworkCANFD {
		e.report(RTRNotSupported, Error)
		return nil, false
	}
	maxLen := maxCANDataLength
	if msg.Network == NetworkCANFD {
		maxLen = maxCANFDDataLength
	}
	if len(msg.Data) > maxLen {
		e.report(MessageMaxLengthExceeded, Error)
		return nil, false
	}

	body := make([]byte, 0, codecHeaderLen+len(msg.Data))
	body = append(body, byte(msg.Network))
	var arbid [4]byte
	binary.LittleEndian.PutUint32(arbid[:], msg.ArbID)
	body = append(body, arbid[:]...)

	var flags byte
	if msg.RTR {
		flags |= codecFlagRTR
	}
	if msg.Network == NetworkCANFD {
		flags |= codecFlagFD
	}
	body = append(body, flags)

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], e.ticksFor(msg.Timestamp))
	body = append(body, ts[:]...)

	body = append(body, byte(len(msg.Data)))
	body = append(body, msg.Data...)
	return body, true
}

func (e *Encoder) ticksFor(t time.Time) uint64 {
	if e.Capabilities.TimestampResolution <= 0 || t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano() / int64(e.Capabilities.TimestampResolution))
}

// Decoder maps a packetizer-frame body back to a structured Message. See
// spec §4.4.
type Decoder struct {
	Capabilities DeviceCapabilities
	report       Reporter
}

// NewDecoder builds a Decoder reporting malformed input through report.
func NewDecoder(caps DeviceCapabilities, report Reporter) *Decoder {
	if report == nil {
		report = func(Type, Severity) {}
	}
	return &Decoder{Capabilities: caps, report: report}
}

// Decode parses body into a Message, or reports PacketDecodingError and
// returns false if body is truncated or declares an out-of-range length.
func (d *Decoder) Decode(body []byte) (Message, bool) {
	if len(body) < codecHeaderLen {
		d.report(PacketDecodingError, Error)
		return Message{}, false
	}

	network := NetworkType(body[0])
	arbid := binary.LittleEndian.Uint32(body[1:5])
	flags := body[5]
	ticks := binary.LittleEndian.Uint64(body[6:14])
	dlc := int(body[14])

	if len(body) < codecHeaderLen+dlc {
		d.report(PacketDecodingError, Error)
		return Message{}, false
	}

	data := append([]byte(nil), body[codecHeaderLen:codecHeaderLen+dlc]...)
	return Message{
		Network:   network,
		ArbID:     arbid,
		Data:      data,
		RTR:       flags&codecFlagRTR != 0,
		Timestamp: d.timeFor(ticks),
	}, true
}

func (d *Decoder) timeFor(ticks uint64) time.Time {
	if d.Capabilities.TimestampResolution <= 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(ticks)*int64(d.Capabilities.TimestampResolution))
}
