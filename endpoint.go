package icsnet

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidAddress is returned by ParseAddress when s is not a well-formed
// device address.
var ErrInvalidAddress = errors.New("icsnet: invalid device address")

// Address identifies one device to open: a registered transport name (see
// RegisterFactory) plus a transport-specific serial/locator, with optional
// query parameters for transport-specific tuning. It is the
// connection-string counterpart to FindDevices/OpenDriver, letting a CLI or
// config file name a device as a single string such as
// "usbftdi://1A2B3C" or "ethertunnel://tap0?hostMAC=12:23:34:45:56:67"
// rather than constructing a FoundDevice by hand. Adapted from the
// teacher's Endpoint, narrowing its scheme+host/path+query URL parsing
// (aimed at an Azure service URL with account/key extraction) down to the
// transport+serial shape this library's OpenDriver actually needs.
type Address struct {
	Transport string
	Serial    string
	Params    url.Values
}

// ParseAddress parses a "transport://serial?key=value" device address.
func ParseAddress(s string) (Address, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	serial := u.Host
	if serial == "" {
		serial = strings.TrimPrefix(u.Opaque, "//")
	}
	if serial == "" && u.Path != "" {
		serial = strings.Trim(u.Path, "/")
	}
	if serial == "" {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	return Address{Transport: u.Scheme, Serial: serial, Params: u.Query()}, nil
}

// String renders a back into its "transport://serial?params" form.
func (a Address) String() string {
	u := url.URL{Scheme: a.Transport, Host: a.Serial, RawQuery: a.Params.Encode()}
	return u.String()
}

// Open resolves a's transport through the factory registry and opens the
// device, per FindDevices/OpenDriver (see driver.go).
func (a Address) Open() (Driver, error) {
	return OpenDriver(a.Transport, a.Serial)
}
