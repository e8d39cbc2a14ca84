package icsnet

import "sync/atomic"

// Metrics tracks transaction/byte counters for a Driver, independent of the
// Event Manager's fault reporting. Communication calls Increment* through
// the metricsDriver decorator below; collectors read back via Get*. This
// mirrors the teacher's Metrics/DefaultMetrics/metricsDriver shape, narrowed
// from per-request-kind Azure counters (list/delete transactions) to the
// two kinds of traffic a byte-pipe Driver actually produces: reads and
// writes.
type Metrics interface {
	IncrementReadTransaction()
	IncrementWriteTransaction()
	IncrementBytesReceived(n int64)
	IncrementBytesSent(n int64)

	GetReadTransactionCount() int64
	GetWriteTransactionCount() int64
	GetBytesReceived() int64
	GetBytesSent() int64
}

// DefaultMetrics implements Metrics with atomic counters.
type DefaultMetrics struct {
	readTransactions  int64
	writeTransactions int64
	bytesReceived     int64
	bytesSent         int64
}

// NewDefaultMetrics builds a zeroed DefaultMetrics.
func NewDefaultMetrics() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementReadTransaction()  { atomic.AddInt64(&m.readTransactions, 1) }
func (m *DefaultMetrics) IncrementWriteTransaction() { atomic.AddInt64(&m.writeTransactions, 1) }
func (m *DefaultMetrics) IncrementBytesReceived(n int64) {
	atomic.AddInt64(&m.bytesReceived, n)
}
func (m *DefaultMetrics) IncrementBytesSent(n int64) { atomic.AddInt64(&m.bytesSent, n) }

func (m *DefaultMetrics) GetReadTransactionCount() int64 {
	return atomic.LoadInt64(&m.readTransactions)
}
func (m *DefaultMetrics) GetWriteTransactionCount() int64 {
	return atomic.LoadInt64(&m.writeTransactions)
}
func (m *DefaultMetrics) GetBytesReceived() int64 { return atomic.LoadInt64(&m.bytesReceived) }
func (m *DefaultMetrics) GetBytesSent() int64     { return atomic.LoadInt64(&m.bytesSent) }

// metricsDriver decorates a Driver, counting transactions and bytes without
// participating in fault reporting; it is composed underneath
// reportingDriver (see driver.go) by NewCommunication when a Metrics is
// supplied via WithMetrics.
type metricsDriver struct {
	Driver
	m Metrics
}

func newMetricsDriver(d Driver, m Metrics) *metricsDriver {
	return &metricsDriver{Driver: d, m: m}
}

func (d *metricsDriver) ReadChunk() ([]byte, bool) {
	chunk, ok := d.Driver.ReadChunk()
	if ok {
		d.m.IncrementReadTransaction()
		d.m.IncrementBytesReceived(int64(len(chunk)))
	}
	return chunk, ok
}

func (d *metricsDriver) WriteInternal(data []byte) bool {
	ok := d.Driver.WriteInternal(data)
	if ok {
		d.m.IncrementWriteTransaction()
		d.m.IncrementBytesSent(int64(len(data)))
	}
	return ok
}
