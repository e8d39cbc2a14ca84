// Package loopback provides an in-memory Driver for tests and local
// experimentation: writes to one end are immediately readable from the
// other, with no real transport underneath.
package loopback

import (
	"sync"

	"github.com/icsneo/icsnet"
)

func init() {
	icsnet.RegisterFactory("loopback", Factory{})
}

// Pair returns two connected Drivers; bytes written to a are readable from
// b and vice versa.
func Pair() (*Driver, *Driver) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	a := &Driver{out: ab, in: ba}
	b := &Driver{out: ba, in: ab}
	return a, b
}

// Driver is a loopback icsnet.Driver backed by a pair of buffered channels.
type Driver struct {
	mu     sync.Mutex
	open   bool
	closed chan struct{}
	out    chan []byte
	in     chan []byte
}

var _ icsnet.Driver = (*Driver)(nil)

func (d *Driver) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return true
	}
	d.open = true
	d.closed = make(chan struct{})
	return true
}

func (d *Driver) Close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return true
	}
	d.open = false
	close(d.closed)
	return true
}

func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Driver) ReadChunk() ([]byte, bool) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed == nil {
		return nil, false
	}
	select {
	case chunk := <-d.in:
		return chunk, true
	case <-closed:
		return nil, false
	}
}

func (d *Driver) WriteInternal(data []byte) bool {
	if !d.IsOpen() {
		return false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case d.out <- cp:
		return true
	default:
		return false
	}
}

func (d *Driver) WriteQueueFull() bool {
	return len(d.out) >= cap(d.out)
}

func (d *Driver) WriteQueueAlmostFull() bool {
	return len(d.out) >= cap(d.out)*3/4
}

// Factory discovers no devices; loopback pairs are constructed directly via
// Pair for tests.
type Factory struct{}

var _ icsnet.Factory = Factory{}

func (Factory) Find() ([]icsnet.FoundDevice, error) { return nil, nil }

func (Factory) Open(serial string) (icsnet.Driver, error) {
	d, _ := Pair()
	d.Open()
	return d, nil
}
