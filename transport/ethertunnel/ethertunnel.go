// Package ethertunnel implements an icsnet.Driver over a raw L2 tap
// interface, carrying the Ethernet tunnel frames that icsnet's
// EthernetPacketizer (C3) fragments and reassembles.
package ethertunnel

import (
	"net"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/songgao/water"

	"github.com/icsneo/icsnet"
)

func init() {
	icsnet.RegisterFactory("ethertunnel", Factory{})
}

// Driver is an ethertunnel icsnet.Driver backed by a raw tap interface.
// Every chunk ReadChunk returns, and every chunk passed to WriteInternal,
// is a complete L2 frame in icsnet's Ethernet tunnel wire format.
type Driver struct {
	ifaceName string
	deviceMAC net.HardwareAddr

	mu     sync.Mutex
	open   bool
	iface  *water.Interface
	closed chan struct{}
}

var _ icsnet.Driver = (*Driver)(nil)

// New builds a Driver bound to an existing tap interface named ifaceName.
// A non-nil deviceMAC filters inbound frames to those whose source MAC is
// that device's, mirroring how a real Ethernet tunnel driver only surfaces
// frames from the device it was opened for. The destination MAC is not
// checked here.
func New(ifaceName string, deviceMAC net.HardwareAddr) *Driver {
	return &Driver{ifaceName: ifaceName, deviceMAC: deviceMAC}
}

func (d *Driver) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return true
	}

	cfg := water.Config{DeviceType: water.TAP}
	cfg.Name = d.ifaceName
	iface, err := water.New(cfg)
	if err != nil {
		return false
	}

	d.iface = iface
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
	err := d.iface.Close()
	d.open = false
	return err == nil
}

func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Driver) ReadChunk() ([]byte, bool) {
	d.mu.Lock()
	iface := d.iface
	d.mu.Unlock()
	if iface == nil {
		return nil, false
	}

	buf := make([]byte, 65536)
	for {
		n, err := iface.Read(buf)
		if err != nil {
			return nil, false
		}
		if n < 14 {
			continue
		}

		pkt := gopacket.NewPacket(buf[:n], layers.LayerTypeEthernet, gopacket.NoCopy)
		eth, ok := pkt.LinkLayer().(*layers.Ethernet)
		if !ok {
			continue
		}
		if eth.EthernetType != layers.EthernetType(icsnet.EthernetTunnelEthertype) {
			continue
		}
		if d.deviceMAC != nil && eth.SrcMAC.String() != d.deviceMAC.String() {
			continue
		}

		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		return chunk, true
	}
}

func (d *Driver) WriteInternal(data []byte) bool {
	d.mu.Lock()
	iface := d.iface
	d.mu.Unlock()
	if iface == nil {
		return false
	}
	_, err := iface.Write(data)
	return err == nil
}

// WriteQueueFull and WriteQueueAlmostFull are always false: tap writes are
// synchronous syscalls with no internal queue to report on.
func (d *Driver) WriteQueueFull() bool       { return false }
func (d *Driver) WriteQueueAlmostFull() bool { return false }

// Factory discovers no devices on its own: Ethernet tunnel peers are
// discovered via a higher-level broadcast/announce protocol, out of scope
// here. Open binds to an already-known tap interface name passed as
// serial.
type Factory struct{}

var _ icsnet.Factory = Factory{}

func (Factory) Find() ([]icsnet.FoundDevice, error) { return nil, nil }

func (Factory) Open(serial string) (icsnet.Driver, error) {
	d := New(serial, nil)
	if !d.Open() {
		return nil, icsnet.ErrUnsupportedTransport
	}
	return d, nil
}
