// Package usbftdi implements an icsnet.Driver over an FTDI-class USB bulk
// endpoint pair, the common transport for bench devices that speak the
// byte packetizer protocol directly over a USB serial bridge.
package usbftdi

import (
	"sync"

	"github.com/google/gousb"

	"github.com/icsneo/icsnet"
)

// FTDI vendor/product defaults; concrete devices register their own
// product IDs with RegisterProductID before calling Find.
const ftdiVendorID = gousb.ID(0x0403)

var knownProductIDs = map[gousb.ID]string{
	gousb.ID(0x6001): "FTDI FT232",
	gousb.ID(0x6010): "FTDI FT2232",
}

func init() {
	icsnet.RegisterFactory("usbftdi", Factory{})
}

// RegisterProductID associates an additional FTDI product ID with a
// human-readable description for Find.
func RegisterProductID(pid gousb.ID, description string) {
	knownProductIDs[pid] = description
}

// Driver is a usbftdi icsnet.Driver. One bulk OUT endpoint carries writes;
// one bulk IN endpoint carries reads.
type Driver struct {
	serial string

	mu      sync.Mutex
	open    bool
	closed  chan struct{}
	ctx     *gousb.Context
	dev     *gousb.Device
	iface   *gousb.Interface
	in      *gousb.InEndpoint
	out     *gousb.OutEndpoint
	readBuf []byte
}

var _ icsnet.Driver = (*Driver)(nil)

// New builds a Driver bound to the device with the given USB serial
// string; Open performs the actual enumeration and claim.
func New(serial string) *Driver {
	return &Driver{serial: serial, readBuf: make([]byte, 4096)}
}

func (d *Driver) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return true
	}

	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(ftdiVendorID, 0)
	if err != nil || dev == nil {
		ctx.Close()
		return false
	}
	if d.serial != "" {
		if s, err := dev.SerialNumber(); err != nil || s != d.serial {
			dev.Close()
			ctx.Close()
			return false
		}
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return false
	}
	iface, err := cfg.Interface(0, 0)
	if err != nil {
		dev.Close()
		ctx.Close()
		return false
	}
	in, err := iface.InEndpoint(1)
	if err != nil {
		iface.Close()
		dev.Close()
		ctx.Close()
		return false
	}
	out, err := iface.OutEndpoint(2)
	if err != nil {
		iface.Close()
		dev.Close()
		ctx.Close()
		return false
	}

	d.ctx = ctx
	d.dev = dev
	d.iface = iface
	d.in = in
	d.out = out
	d.closed = make(chan struct{})
	d.open = true
	return true
}

func (d *Driver) Close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return true
	}
	close(d.closed)
	d.iface.Close()
	d.dev.Close()
	d.ctx.Close()
	d.open = false
	return true
}

func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Driver) ReadChunk() ([]byte, bool) {
	d.mu.Lock()
	in := d.in
	d.mu.Unlock()
	if in == nil {
		return nil, false
	}

	n, err := in.Read(d.readBuf)
	if err != nil {
		return nil, false
	}
	chunk := make([]byte, n)
	copy(chunk, d.readBuf[:n])
	return chunk, true
}

func (d *Driver) WriteInternal(data []byte) bool {
	d.mu.Lock()
	out := d.out
	d.mu.Unlock()
	if out == nil {
		return false
	}
	_, err := out.Write(data)
	return err == nil
}

// WriteQueueFull and WriteQueueAlmostFull are always false: gousb's
// OutEndpoint.Write blocks synchronously rather than queuing, so
// backpressure is expressed by WriteInternal's latency instead.
func (d *Driver) WriteQueueFull() bool        { return false }
func (d *Driver) WriteQueueAlmostFull() bool  { return false }

// Factory enumerates FTDI-class USB devices by registered product ID.
type Factory struct{}

var _ icsnet.Factory = Factory{}

func (Factory) Find() ([]icsnet.FoundDevice, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var found []icsnet.FoundDevice
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != ftdiVendorID {
			return false
		}
		_, known := knownProductIDs[desc.Product]
		return known
	})
	if err != nil {
		return nil, err
	}
	for _, dev := range devs {
		serial, _ := dev.SerialNumber()
		found = append(found, icsnet.FoundDevice{
			Serial:      serial,
			Description: knownProductIDs[dev.Desc.Product],
			ProductID:   uint16(dev.Desc.Product),
		})
		dev.Close()
	}
	return found, nil
}

func (Factory) Open(serial string) (icsnet.Driver, error) {
	d := New(serial)
	if !d.Open() {
		return nil, icsnet.ErrUnsupportedTransport
	}
	return d, nil
}
