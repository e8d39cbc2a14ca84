package icsnet

import (
	"errors"
	"sort"
	"sync"
)

// FoundDevice describes one device discovered by a Factory's Find.
type FoundDevice struct {
	Serial      string
	Description string
	ProductID   uint16
}

// Driver is the abstract bidirectional byte pipe a Communication drives.
// Concrete transports (icsnet/transport/usbftdi, ethertunnel, shm) implement
// it directly. See spec §4.8.
type Driver interface {
	Open() bool
	Close() bool
	IsOpen() bool

	// ReadChunk blocks until the next chunk of raw bytes is available, or
	// returns false once the driver is closed.
	ReadChunk() ([]byte, bool)
	// WriteInternal synchronously writes data to the transport, blocking
	// until it is accepted, and reports success.
	WriteInternal(data []byte) bool

	WriteQueueFull() bool
	WriteQueueAlmostFull() bool
}

// Factory discovers and opens devices for one transport family.
type Factory interface {
	Find() ([]FoundDevice, error)
	Open(serial string) (Driver, error)
}

// ErrUnsupportedTransport is returned when no factory is registered under
// the requested transport name.
var ErrUnsupportedTransport = errors.New("icsnet: unsupported transport")

var (
	factoriesMu sync.Mutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a Factory under name (e.g. "usbftdi",
// "ethertunnel", "shm", "loopback").
func RegisterFactory(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("icsnet: factory already registered for transport " + name)
	}
	factories[name] = factory
}

// UnregisterFactory removes a transport's factory registration.
func UnregisterFactory(name string) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	delete(factories, name)
}

// GetFactories returns the names of every registered transport, sorted.
func GetFactories() []string {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFactory(name string) (Factory, bool) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	f, ok := factories[name]
	return f, ok
}

// FindDevices discovers devices through the named transport's factory, or
// through every registered factory when transport is empty.
func FindDevices(transport string) ([]FoundDevice, error) {
	names := GetFactories()
	if transport != "" {
		names = []string{transport}
	}

	var out []FoundDevice
	for _, name := range names {
		f, ok := lookupFactory(name)
		if !ok {
			if transport != "" {
				return nil, ErrUnsupportedTransport
			}
			continue
		}
		found, err := f.Find()
		if err != nil {
			continue
		}
		out = append(out, found...)
	}
	return out, nil
}

// OpenDriver opens the device with the given serial through transport's
// registered factory.
func OpenDriver(transport, serial string) (Driver, error) {
	f, ok := lookupFactory(transport)
	if !ok {
		return nil, ErrUnsupportedTransport
	}
	return f.Open(serial)
}

// reportingDriver decorates a Driver, translating low-level failures into
// Events. It mirrors the teacher's metricsDriver wrapper shape, adapted
// from byte/transaction counting to fault reporting.
type reportingDriver struct {
	Driver
	report Reporter
}

func newReportingDriver(d Driver, report Reporter) *reportingDriver {
	return &reportingDriver{Driver: d, report: report}
}

func (d *reportingDriver) Open() bool {
	ok := d.Driver.Open()
	if !ok {
		d.report(DriverFailedToOpen, Error)
	}
	return ok
}

func (d *reportingDriver) Close() bool {
	ok := d.Driver.Close()
	if !ok {
		d.report(DriverFailedToClose, Error)
	}
	return ok
}

func (d *reportingDriver) ReadChunk() ([]byte, bool) {
	chunk, ok := d.Driver.ReadChunk()
	if !ok {
		d.report(FailedToRead, Error)
	}
	return chunk, ok
}

func (d *reportingDriver) WriteInternal(data []byte) bool {
	ok := d.Driver.WriteInternal(data)
	if !ok {
		d.report(FailedToWrite, Error)
	}
	return ok
}
