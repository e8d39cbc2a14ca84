package icsnet

import (
	"errors"
	"testing"
)

func TestParseAddressHostForm(t *testing.T) {
	addr, err := ParseAddress("usbftdi://1A2B3C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Transport != "usbftdi" || addr.Serial != "1A2B3C" {
		t.Fatalf("got %+v, want transport=usbftdi serial=1A2B3C", addr)
	}
}

func TestParseAddressWithQueryParams(t *testing.T) {
	addr, err := ParseAddress("ethertunnel://tap0?hostMAC=12:23:34:45:56:67")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Transport != "ethertunnel" || addr.Serial != "tap0" {
		t.Fatalf("got %+v", addr)
	}
	if addr.Params.Get("hostMAC") != "12:23:34:45:56:67" {
		t.Fatalf("got %q, want the hostMAC query param", addr.Params.Get("hostMAC"))
	}
}

func TestParseAddressOpaqueForm(t *testing.T) {
	addr, err := ParseAddress("shm:devtoken42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Transport != "shm" || addr.Serial != "devtoken42" {
		t.Fatalf("got %+v, want transport=shm serial=devtoken42", addr)
	}
}

func TestParseAddressRejectsMissingScheme(t *testing.T) {
	_, err := ParseAddress("justastring")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("got %v, want ErrInvalidAddress", err)
	}
}

func TestParseAddressRejectsMissingSerial(t *testing.T) {
	_, err := ParseAddress("usbftdi://")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("got %v, want ErrInvalidAddress", err)
	}
}

func TestAddressStringRoundTrips(t *testing.T) {
	addr, err := ParseAddress("usbftdi://ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reparsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("unexpected error reparsing: %v", err)
	}
	if reparsed.Transport != addr.Transport || reparsed.Serial != addr.Serial {
		t.Fatalf("got %+v, want %+v", reparsed, addr)
	}
}

func TestAddressOpenUsesFactoryRegistry(t *testing.T) {
	const name = "test-transport-address-open"
	RegisterFactory(name, fakeFactory{})
	defer UnregisterFactory(name)

	addr := Address{Transport: name, Serial: "S1"}
	drv, err := addr.Open()
	if err != nil || drv == nil {
		t.Fatalf("got (%v, %v), want a driver with no error", drv, err)
	}
}
