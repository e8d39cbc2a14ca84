// Package client composes icsnet's Communication, EventManager, and disk
// drivers into the Device-level API surface described in spec §6:
// find/open/close/goOnline/goOffline, transmit, subscribe,
// get_events/get_last_error, disk_read/disk_write. It lives apart from the
// root icsnet package so that package can stay free of a dependency on
// icsnet/disk (which itself depends on icsnet for Reporter/Type/Severity).
package client

import (
	"time"

	"github.com/icsneo/icsnet"
	"github.com/icsneo/icsnet/disk"
)

// Library is the top-level entry point: one EventManager and Config shared
// by every Device it opens.
type Library struct {
	events *icsnet.EventManager
	cfg    *icsnet.Config
}

// NewLibrary builds a Library from the functional-options Config (event
// ring capacity, poll cadence, subscriber queue depth, disk timeout); see
// icsnet.Option. Devices opened from it inherit cfg's CommunicationOptions
// and DiskTimeout unless a caller overrides them explicitly.
func NewLibrary(opts ...icsnet.Option) *Library {
	cfg := icsnet.ApplyOptions(opts...)
	return &Library{
		events: icsnet.NewEventManager(cfg.EventRingCapacity()),
		cfg:    cfg,
	}
}

// FindDevices discovers devices across every registered transport, or just
// transport when non-empty.
func (l *Library) FindDevices(transport string) ([]icsnet.FoundDevice, error) {
	return icsnet.FindDevices(transport)
}

// GetEvents/GetLastError at the library level operate on the shared global
// ring, for faults not attributed to any open Device. FindDevices records
// nothing there; it returns its errors.
func (l *Library) GetEvents(filter icsnet.Filter, max int) []icsnet.Event {
	return l.events.Get("", filter, max, true)
}

func (l *Library) GetLastError() (icsnet.Event, bool) {
	return l.events.GetLastError("")
}

// Device is one opened device: its transport, wire framing, and disk
// drivers, plus online/offline state.
type Device struct {
	lib       *Library
	serial    string
	transport string

	comm   *icsnet.Communication
	online bool

	readDriver  *disk.ExtExtractorReadDriver
	writeDriver *disk.ExtExtractorWriteDriver
	vsaOffset   uint64
}

// Open opens the device identified by serial on transport, wiring its
// Communication and disk drivers. caps parameterizes the codec
// (CAN-FD support, timestamp resolution) and the VSA offset used for disk
// addressing. Any opts override the Library's Config-derived
// CommunicationOptions for this Device only.
func (l *Library) Open(transport, serial string, caps icsnet.DeviceCapabilities, opts ...icsnet.CommunicationOption) (*Device, error) {
	drv, err := icsnet.OpenDriver(transport, serial)
	if err != nil {
		return nil, err
	}

	report := l.events.Reporter(serial, serial)
	commOpts := append(l.cfg.CommunicationOptions(), opts...)
	comm := icsnet.NewCommunication(drv, caps, report, commOpts...)
	if !comm.Start() {
		return nil, icsnet.ErrUnsupportedTransport
	}

	readDriver := &disk.ExtExtractorReadDriver{}
	return &Device{
		lib:         l,
		serial:      serial,
		transport:   transport,
		comm:        comm,
		readDriver:  readDriver,
		writeDriver: &disk.ExtExtractorWriteDriver{Cache: readDriver},
		vsaOffset:   caps.VSAOffset,
	}, nil
}

// Close tears down the device's Communication and releases its event ring.
func (d *Device) Close() bool {
	d.online = false
	ok := d.comm.Close()
	d.lib.events.Forget(d.serial)
	return ok
}

// GoOnline marks the device ready to transmit. Real devices gate some
// hardware-level polling on this flag; this library's transports always
// stream once opened, so GoOnline/GoOffline here only gate Transmit.
func (d *Device) GoOnline() bool {
	d.online = true
	return true
}

func (d *Device) GoOffline() bool {
	d.online = false
	return true
}

func (d *Device) IsOnline() bool { return d.online }

// Transmit encodes and enqueues msg, reporting DeviceCurrentlyOffline and
// refusing if the device hasn't gone online.
func (d *Device) Transmit(msg icsnet.Message) bool {
	if !d.online {
		d.lib.events.Add(d.serial, icsnet.DeviceCurrentlyOffline, icsnet.Error, d.serial)
		return false
	}
	return d.comm.Transmit(msg)
}

// Subscribe registers handler for every decoded Message from this device.
func (d *Device) Subscribe(handler func(icsnet.Message)) string {
	return d.comm.Subscribe(handler)
}

func (d *Device) Unsubscribe(id string) {
	d.comm.Unsubscribe(id)
}

// GetEvents/GetLastError operate on this device's own event ring.
func (d *Device) GetEvents(filter icsnet.Filter, max int) []icsnet.Event {
	return d.lib.events.Get(d.serial, filter, max, true)
}

func (d *Device) GetLastError() (icsnet.Event, bool) {
	return d.lib.events.GetLastError(d.serial)
}

// DiskRead implements device.disk_read(pos, len, timeout): a synchronous,
// cache-backed block-aligned read. A zero timeout falls back to the
// Library's configured DiskTimeout.
func (d *Device) DiskRead(pos uint64, into []byte, timeout time.Duration) (uint64, bool) {
	report := d.lib.events.Reporter(d.serial, d.serial)
	return disk.ReadLogicalDisk(d.comm, d.readDriver, report, d.vsaOffset, pos, into, uint64(len(into)), d.resolveTimeout(timeout))
}

// DiskWrite implements device.disk_write(pos, bytes, timeout): a
// synchronous read-modify-write with atomic compare-and-retry semantics. A
// zero timeout falls back to the Library's configured DiskTimeout.
func (d *Device) DiskWrite(pos uint64, from []byte, timeout time.Duration) (uint64, bool) {
	report := d.lib.events.Reporter(d.serial, d.serial)
	return disk.WriteLogicalDisk(d.comm, d.readDriver, d.writeDriver, report, d.vsaOffset, pos, from, uint64(len(from)), d.resolveTimeout(timeout))
}

func (d *Device) resolveTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return d.lib.cfg.DiskTimeout()
}
