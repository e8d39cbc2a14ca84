package icsnet

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
)

// diskFrameMagic tags a packetizer-frame body as a disk-protocol
// request/response rather than a structured Message, so the reader task can
// route it to a pending Transact call instead of the codec. Modeled on the
// Command/Payload correlation pattern of a memory-mapped message queue, the
// closest analogue in the source material to matching async replies to
// synchronous disk requests.
const diskFrameMagic byte = 0xD1

// DefaultSubscriberQueueDepth bounds per-subscriber backlog before further
// messages are dropped for that subscriber (reported as
// PollingMessageOverflow), so one slow subscriber cannot stall the reader.
const DefaultSubscriberQueueDepth = 256

// subscription is one registered message handler with its own bounded
// dispatch queue and goroutine.
type subscription struct {
	handler func(Message)
	queue   chan Message
	done    chan struct{}
}

// CommunicationOption configures a Communication at construction time.
type CommunicationOption func(*Communication)

// WithEthernetPacketizer attaches C3 framing for Ethernet-shaped transports.
func WithEthernetPacketizer(ep *EthernetPacketizer) CommunicationOption {
	return func(c *Communication) { c.ethPk = ep }
}

// WithPoll overrides the reader/writer tasks' AdaptivePoll bounds; zero
// values leave the corresponding default in place.
func WithPoll(fast, steady time.Duration) CommunicationOption {
	return func(c *Communication) {
		if fast <= 0 {
			fast = DefaultFastPoll
		}
		if steady <= 0 {
			steady = DefaultDataPoll
		}
		c.poll = NewAdaptivePoll(fast, steady)
	}
}

// WithQueueDepth overrides the per-subscriber and outbound write queue
// depth.
func WithQueueDepth(n int) CommunicationOption {
	return func(c *Communication) {
		if n > 0 {
			c.queueDepth = n
		}
	}
}

// WithMetrics attaches a transaction/byte counter to the underlying Driver,
// in addition to the always-present fault reporting. See metrics.go.
func WithMetrics(m Metrics) CommunicationOption {
	return func(c *Communication) { c.metrics = m }
}

// Communication owns one open device's Driver (C8), Packetizer (C2),
// optional EthernetPacketizer (C3), and Encoder/Decoder pair (C4), and
// drives its reader and writer tasks. See spec §4.5/§5.
type Communication struct {
	driver  Driver
	pk      *Packetizer
	ethPk   *EthernetPacketizer
	encoder *Encoder
	decoder *Decoder
	report  Reporter
	metrics Metrics

	writeQueue chan []byte
	queueDepth int
	closeOnce  sync.Once
	closed     chan struct{}

	subsMu sync.Mutex
	subs   map[string]*subscription

	poll *AdaptivePoll

	diskMu      sync.Mutex
	diskPending map[uint32]chan []byte
	diskSeq     uint32
}

// NewCommunication wires a Communication for an opened driver. caps
// parameterizes the codec pair; report receives every fault this
// Communication and its owned components produce.
func NewCommunication(driver Driver, caps DeviceCapabilities, report Reporter, opts ...CommunicationOption) *Communication {
	if report == nil {
		report = func(Type, Severity) {}
	}
	c := &Communication{
		pk:          NewPacketizer(report),
		encoder:     NewEncoder(caps, report),
		decoder:     NewDecoder(caps, report),
		report:      report,
		queueDepth:  DefaultSubscriberQueueDepth,
		closed:      make(chan struct{}),
		subs:        make(map[string]*subscription),
		poll:        NewAdaptivePoll(DefaultFastPoll, DefaultDataPoll),
		diskPending: make(map[uint32]chan []byte),
	}
	for _, opt := range opts {
		opt(c)
	}

	wrapped := driver
	if c.metrics != nil {
		wrapped = newMetricsDriver(wrapped, c.metrics)
	}
	c.driver = newReportingDriver(wrapped, report)
	c.writeQueue = make(chan []byte, c.queueDepth)
	return c
}

// Metrics returns the transaction/byte counters attached via WithMetrics,
// or nil if none was configured.
func (c *Communication) Metrics() Metrics { return c.metrics }

// Start opens the underlying driver and spawns the reader and writer
// tasks, each a single long-lived goroutine per spec §5.
func (c *Communication) Start() bool {
	if !c.driver.Open() {
		return false
	}
	go c.readerTask()
	go c.writerTask()
	return true
}

// Close signals both tasks to stop and closes the driver, then tears down
// every subscription.
func (c *Communication) Close() bool {
	c.closeOnce.Do(func() { close(c.closed) })
	ok := c.driver.Close()

	c.subsMu.Lock()
	subs := c.subs
	c.subs = make(map[string]*subscription)
	c.subsMu.Unlock()
	for _, sub := range subs {
		close(sub.queue)
	}

	return ok
}

func (c *Communication) readerTask() {
	for {
		select {
		case <-c.closed:
			return
		default:
		}

		chunk, ok := c.driver.ReadChunk()
		if !ok || len(chunk) == 0 {
			select {
			case <-c.closed:
				return
			default:
			}
			c.poll.Sleep()
			continue
		}
		c.poll.Reset()

		var bodies [][]byte
		if c.ethPk != nil {
			c.ethPk.InputUp(chunk)
			for _, payload := range c.ethPk.OutputUp() {
				bodies = append(bodies, c.pk.Decode(payload)...)
			}
		} else {
			bodies = append(bodies, c.pk.Decode(chunk)...)
		}

		for _, body := range bodies {
			if c.routeDiskReply(body) {
				continue
			}
			if msg, ok := c.decoder.Decode(body); ok {
				c.dispatch(msg)
			}
		}
	}
}

// routeDiskReply delivers body to a pending Transact call if it carries the
// disk-protocol tag, reporting true so the caller skips ordinary message
// decoding. A reply for an id with no waiter (already timed out) is
// dropped.
func (c *Communication) routeDiskReply(body []byte) bool {
	tag, id, payload, ok := parseTransactFrame(body)
	if !ok || tag != diskFrameMagic {
		return false
	}

	c.diskMu.Lock()
	ch, waiting := c.diskPending[id]
	c.diskMu.Unlock()
	if waiting {
		select {
		case ch <- append([]byte(nil), payload...):
		default:
		}
	}
	return true
}

// Transact issues a disk-protocol request and blocks for its correlated
// reply or timeout. Disk I/O sits above the Communication's ordinary
// Message dispatch, issuing request packets and synchronously awaiting
// response packets (see spec §2).
func (c *Communication) Transact(req []byte, timeout time.Duration) ([]byte, bool) {
	id := c.nextDiskID()
	ch := make(chan []byte, 1)

	c.diskMu.Lock()
	c.diskPending[id] = ch
	c.diskMu.Unlock()
	defer func() {
		c.diskMu.Lock()
		delete(c.diskPending, id)
		c.diskMu.Unlock()
	}()

	var buf bytes.Buffer
	buildTransactFrame(&buf, diskFrameMagic, id, req)

	select {
	case c.writeQueue <- buf.Bytes():
	default:
		c.report(TransmitBufferFull, Error)
		return nil, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		return resp, true
	case <-timer.C:
		c.report(Timeout, Error)
		return nil, false
	case <-c.closed:
		return nil, false
	}
}

func (c *Communication) nextDiskID() uint32 {
	c.diskMu.Lock()
	defer c.diskMu.Unlock()
	c.diskSeq++
	return c.diskSeq
}

func (c *Communication) writerTask() {
	for {
		select {
		case <-c.closed:
			return
		case body, ok := <-c.writeQueue:
			if !ok {
				return
			}
			if !c.writeFramed(body) {
				return
			}
		}
	}
}

// writeFramed frames body through C2 (and C3, if Ethernet-shaped) and
// writes the resulting wire frames to the driver, honoring backpressure via
// AdaptivePoll. It returns false if the driver closed mid-write.
func (c *Communication) writeFramed(body []byte) bool {
	framed := c.pk.Encode(body)

	l2 := [][]byte{framed}
	if c.ethPk != nil {
		c.ethPk.InputDown(framed)
		l2 = c.ethPk.OutputDown()
	}

	for _, frame := range l2 {
		for c.driver.WriteQueueFull() {
			select {
			case <-c.closed:
				return false
			default:
			}
			c.poll.Sleep()
		}
		if !c.driver.WriteInternal(frame) {
			return true
		}
		if c.driver.WriteQueueAlmostFull() {
			c.poll.Sleep()
		} else {
			c.poll.Reset()
		}
	}
	return true
}

// Transmit encodes and enqueues msg for transmission on the writer task.
// It reports and returns false if encoding fails or the outbound queue is
// full.
func (c *Communication) Transmit(msg Message) bool {
	body, ok := c.encoder.Encode(msg)
	if !ok {
		return false
	}
	select {
	case c.writeQueue <- body:
		return true
	default:
		c.report(TransmitBufferFull, Error)
		return false
	}
}

// Subscribe registers handler to receive every decoded Message for this
// device in on-wire order, dispatched from a dedicated goroutine so a slow
// handler cannot stall the reader task. It returns a subscription id for
// Unsubscribe.
func (c *Communication) Subscribe(handler func(Message)) string {
	id := uuid.New().String()
	sub := &subscription{
		handler: handler,
		queue:   make(chan Message, c.queueDepth),
		done:    make(chan struct{}),
	}

	c.subsMu.Lock()
	c.subs[id] = sub
	c.subsMu.Unlock()

	go func() {
		for msg := range sub.queue {
			sub.handler(msg)
		}
		close(sub.done)
	}()
	return id
}

// Unsubscribe removes a subscription and waits for its dispatch goroutine
// to drain and exit.
func (c *Communication) Unsubscribe(id string) {
	c.subsMu.Lock()
	sub, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	if ok {
		close(sub.queue)
		<-sub.done
	}
}

func (c *Communication) dispatch(msg Message) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		select {
		case sub.queue <- msg:
		default:
			c.report(PollingMessageOverflow, Warning)
		}
	}
}
