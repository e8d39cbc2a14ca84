package icsnet

import (
	"errors"
	"testing"
)

type fakeDriver struct {
	openOK  bool
	closeOK bool
}

func (d *fakeDriver) Open() bool                 { return d.openOK }
func (d *fakeDriver) Close() bool                { return d.closeOK }
func (d *fakeDriver) IsOpen() bool                { return true }
func (d *fakeDriver) ReadChunk() ([]byte, bool)   { return nil, false }
func (d *fakeDriver) WriteInternal(b []byte) bool { return true }
func (d *fakeDriver) WriteQueueFull() bool        { return false }
func (d *fakeDriver) WriteQueueAlmostFull() bool  { return false }

type fakeFactory struct {
	devices []FoundDevice
	findErr error
}

func (f fakeFactory) Find() ([]FoundDevice, error) { return f.devices, f.findErr }
func (f fakeFactory) Open(serial string) (Driver, error) {
	return &fakeDriver{openOK: true, closeOK: true}, nil
}

func TestFactoryRegistryRoundTrip(t *testing.T) {
	const name = "test-transport-registry"
	RegisterFactory(name, fakeFactory{devices: []FoundDevice{{Serial: "X1"}}})
	defer UnregisterFactory(name)

	found := false
	for _, n := range GetFactories() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q in GetFactories()", name)
	}

	devices, err := FindDevices(name)
	if err != nil {
		t.Fatalf("FindDevices failed: %v", err)
	}
	if len(devices) != 1 || devices[0].Serial != "X1" {
		t.Fatalf("got %v, want one device with serial X1", devices)
	}

	drv, err := OpenDriver(name, "X1")
	if err != nil || drv == nil {
		t.Fatalf("OpenDriver failed: %v", err)
	}
}

func TestFindDevicesUnsupportedTransport(t *testing.T) {
	_, err := FindDevices("no-such-transport-xyz")
	if !errors.Is(err, ErrUnsupportedTransport) {
		t.Fatalf("got %v, want ErrUnsupportedTransport", err)
	}
}

func TestOpenDriverUnsupportedTransport(t *testing.T) {
	_, err := OpenDriver("no-such-transport-xyz", "serial")
	if !errors.Is(err, ErrUnsupportedTransport) {
		t.Fatalf("got %v, want ErrUnsupportedTransport", err)
	}
}

func TestRegisterFactoryDuplicatePanics(t *testing.T) {
	const name = "test-transport-dup"
	RegisterFactory(name, fakeFactory{})
	defer UnregisterFactory(name)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on duplicate registration")
		}
	}()
	RegisterFactory(name, fakeFactory{})
}

func TestReportingDriverReportsFailures(t *testing.T) {
	var reported []Type
	report := func(typ Type, _ Severity) { reported = append(reported, typ) }

	d := newReportingDriver(&fakeDriver{openOK: false, closeOK: false}, report)
	if d.Open() {
		t.Fatalf("expected Open to fail")
	}
	if d.Close() {
		t.Fatalf("expected Close to fail")
	}
	if _, ok := d.ReadChunk(); ok {
		t.Fatalf("expected ReadChunk to fail")
	}

	want := []Type{DriverFailedToOpen, DriverFailedToClose, FailedToRead}
	if len(reported) != len(want) {
		t.Fatalf("got %v, want %v", reported, want)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Fatalf("got %v, want %v", reported, want)
		}
	}
}

func TestReportingDriverPassesThroughSuccess(t *testing.T) {
	var reported []Type
	report := func(typ Type, _ Severity) { reported = append(reported, typ) }

	d := newReportingDriver(&fakeDriver{openOK: true, closeOK: true}, report)
	if !d.Open() || !d.Close() {
		t.Fatalf("expected success to pass through untouched")
	}
	if len(reported) != 0 {
		t.Fatalf("expected no reports on success, got %v", reported)
	}
}
