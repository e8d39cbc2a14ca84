// Package shm implements a POSIX shared-memory Driver modeled on a
// memory-mapped communication header shared with an onboard coprocessor: a
// pair of message queues (in/out) plus a block pool for payload bytes,
// mmap'd from a device file. See original_source's platform/posix/firmio.h
// for the structure this is adapted from.
package shm

import (
	"encoding/binary"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/icsneo/icsnet"
)

// Wire layout constants, named for FirmIO's ComHeader/Msg/Mempool.
const (
	comVerSize   = 4
	dataInfoSize = 12 // type, offset, size — each a little-endian uint32
	comHeaderSize = comVerSize + 6*dataInfoSize

	msgQueueInfoSize = 4 * 4 // head, tail, size, reserved
	// msgPayloadSize holds one Mempool block reference: addr, len, ref.
	msgPayloadSize = 3 * 4
	msgSize        = 4 + msgPayloadSize // command + payload

	mempoolBlockSize = 4096
	defaultQueueSlots = 64
	defaultBlocks     = 64
)

const (
	cmdComData  uint32 = 0xAA000000
	cmdComFree  uint32 = 0xAA000001
	cmdComReset uint32 = 0xAA000002
)

// regionLayout computes byte offsets into the mmap'd region for the two
// MsgQueues and the two Mempools, following ComHeader's out/in ordering.
type regionLayout struct {
	total int

	outQueueOff, outQueueLen int
	inQueueOff, inQueueLen   int
	outPoolOff, outPoolLen   int
	inPoolOff, inPoolLen     int
}

func computeLayout(slots, blocks int) regionLayout {
	queueLen := msgQueueInfoSize + slots*msgSize
	poolLen := blocks * mempoolBlockSize

	l := regionLayout{}
	off := comHeaderSize
	l.outQueueOff, l.outQueueLen = off, queueLen
	off += queueLen
	l.inQueueOff, l.inQueueLen = off, queueLen
	off += queueLen
	l.outPoolOff, l.outPoolLen = off, poolLen
	off += poolLen
	l.inPoolOff, l.inPoolLen = off, poolLen
	off += poolLen
	l.total = off
	return l
}

func init() {
	icsnet.RegisterFactory("shm", Factory{})
}

// Driver is a shared-memory icsnet.Driver.
type Driver struct {
	path   string
	layout regionLayout

	mu     sync.Mutex
	open   bool
	fd     int
	base   []byte
	closed chan struct{}

	outMu        sync.Mutex
	outBlockNext uint32
	inRead       chan []byte
	readers      sync.WaitGroup
}

var _ icsnet.Driver = (*Driver)(nil)

// New builds a Driver that will mmap path (a device file exposing the
// shared communication region) on Open.
func New(path string) *Driver {
	return &Driver{path: path, layout: computeLayout(defaultQueueSlots, defaultBlocks), fd: -1}
}

func (d *Driver) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return true
	}

	fd, err := unix.Open(d.path, unix.O_RDWR, 0)
	if err != nil {
		return false
	}

	mapping, err := unix.Mmap(fd, 0, d.layout.total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return false
	}

	d.fd = fd
	d.base = mapping
	d.closed = make(chan struct{})
	d.inRead = make(chan []byte, defaultQueueSlots)
	d.open = true

	d.readers.Add(1)
	go d.pump()
	return true
}

func (d *Driver) Close() bool {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return true
	}
	close(d.closed)
	d.open = false
	base := d.base
	fd := d.fd
	d.mu.Unlock()

	d.readers.Wait()

	err1 := unix.Munmap(base)
	err2 := unix.Close(fd)
	return err1 == nil && err2 == nil
}

func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// pump polls the inbound MsgQueue, translating each ComData message into a
// copied byte chunk delivered to ReadChunk, then returns the block to the
// coprocessor with a ComFree message.
func (d *Driver) pump() {
	defer d.readers.Done()
	poll := icsnet.NewAdaptivePoll(0, 0)
	for {
		select {
		case <-d.closed:
			return
		default:
		}

		msg, hasData := d.readInboundMsg()
		if !hasData {
			poll.Sleep()
			continue
		}
		poll.Reset()
		if msg.command != cmdComData {
			continue
		}

		data := make([]byte, msg.length)
		copy(data, d.base[d.layout.inPoolOff+int(msg.addr):d.layout.inPoolOff+int(msg.addr)+int(msg.length)])

		select {
		case d.inRead <- data:
		case <-d.closed:
			return
		}

		d.writeInboundFree(msg.ref)
	}
}

func (d *Driver) ReadChunk() ([]byte, bool) {
	select {
	case chunk := <-d.inRead:
		return chunk, true
	case <-d.closed:
		return nil, false
	}
}

// WriteInternal stages data into the outbound Mempool and pushes a ComData
// Msg referencing it onto the outbound MsgQueue.
func (d *Driver) WriteInternal(data []byte) bool {
	if len(data) > mempoolBlockSize {
		return false
	}
	if !d.IsOpen() {
		return false
	}

	d.outMu.Lock()
	defer d.outMu.Unlock()

	blockIdx, ok := d.allocOutboundBlock()
	if !ok {
		return false
	}
	addr := uint32(blockIdx * mempoolBlockSize)
	copy(d.base[d.layout.outPoolOff+int(addr):], data)

	return d.writeOutboundMsg(shmMsg{command: cmdComData, addr: addr, length: uint32(len(data)), ref: uint32(blockIdx)})
}

func (d *Driver) WriteQueueFull() bool {
	head, tail, size := d.queueInfo(d.layout.outQueueOff)
	return (tail+1)%size == head
}

func (d *Driver) WriteQueueAlmostFull() bool {
	head, tail, size := d.queueInfo(d.layout.outQueueOff)
	used := (tail - head + size) % size
	return used >= size*3/4
}

type shmMsg struct {
	command uint32
	addr    uint32
	length  uint32
	ref     uint32
}

func (d *Driver) queueInfo(queueOff int) (head, tail, size uint32) {
	b := d.base[queueOff:]
	head = binary.LittleEndian.Uint32(b[0:4])
	tail = binary.LittleEndian.Uint32(b[4:8])
	size = binary.LittleEndian.Uint32(b[8:12])
	if size == 0 {
		size = uint32(defaultQueueSlots)
	}
	return
}

func (d *Driver) setQueueInfo(queueOff int, head, tail uint32) {
	b := d.base[queueOff:]
	binary.LittleEndian.PutUint32(b[0:4], head)
	binary.LittleEndian.PutUint32(b[4:8], tail)
}

func (d *Driver) writeOutboundMsg(m shmMsg) bool {
	head, tail, size := d.queueInfo(d.layout.outQueueOff)
	if (tail+1)%size == head {
		return false
	}
	slotOff := d.layout.outQueueOff + msgQueueInfoSize + int(tail)*msgSize
	encodeMsg(d.base[slotOff:], m)
	d.setQueueInfo(d.layout.outQueueOff, head, (tail+1)%size)
	return true
}

func (d *Driver) readInboundMsg() (shmMsg, bool) {
	head, tail, size := d.queueInfo(d.layout.inQueueOff)
	if head == tail {
		return shmMsg{}, false // empty; caller should back off
	}
	slotOff := d.layout.inQueueOff + msgQueueInfoSize + int(head)*msgSize
	m := decodeMsg(d.base[slotOff:])
	d.setQueueInfo(d.layout.inQueueOff, (head+1)%size, tail)
	return m, true
}

func (d *Driver) writeInboundFree(ref uint32) {
	// A ComFree message returns the consumed inbound block to the pool;
	// the coprocessor is responsible for reclaiming it on its side.
	d.writeOutboundMsg(shmMsg{command: cmdComFree, ref: ref})
}

func encodeMsg(b []byte, m shmMsg) {
	binary.LittleEndian.PutUint32(b[0:4], m.command)
	binary.LittleEndian.PutUint32(b[4:8], m.addr)
	binary.LittleEndian.PutUint32(b[8:12], m.length)
	binary.LittleEndian.PutUint32(b[12:16], m.ref)
}

func decodeMsg(b []byte) shmMsg {
	return shmMsg{
		command: binary.LittleEndian.Uint32(b[0:4]),
		addr:    binary.LittleEndian.Uint32(b[4:8]),
		length:  binary.LittleEndian.Uint32(b[8:12]),
		ref:     binary.LittleEndian.Uint32(b[12:16]),
	}
}

// allocOutboundBlock is a trivial per-driver bump allocator over the fixed
// block count; blocks are never reclaimed by index here because ComFree
// acknowledgement is handled by the coprocessor side of the mapping.
func (d *Driver) allocOutboundBlock() (int, bool) {
	idx := int(d.outBlockNext % defaultBlocks)
	d.outBlockNext++
	return idx, true
}

// Factory discovers FirmIO-style shared-memory device files. Real
// enumeration (walking /dev for the appropriate device nodes) is
// device-specific and left to callers via New; Find returns nothing by
// default.
type Factory struct{}

var _ icsnet.Factory = Factory{}

func (Factory) Find() ([]icsnet.FoundDevice, error) { return nil, nil }

func (Factory) Open(serial string) (icsnet.Driver, error) {
	return New(serial), nil
}
