package icsnet

import (
	"fmt"
	"time"
)

// Type identifies the kind of fault or notice an Event reports. The set is
// closed; DescriptionForType has a fallback for any value outside it.
type Type uint32

// API errors.
const (
	InvalidNeoDevice Type = iota
	RequiredParameterNull
	BufferInsufficient
	OutputTruncated
	ParameterOutOfRange
	DeviceCurrentlyOpen
	DeviceCurrentlyClosed
	DeviceCurrentlyOnline
	DeviceCurrentlyOffline
	DeviceCurrentlyPolling
	DeviceNotCurrentlyPolling
	UnsupportedTXNetwork
	MessageMaxLengthExceeded
	ValueNotYetPresent
	Timeout
)

// Device errors.
const (
	PollingMessageOverflow Type = iota + 100
	NoSerialNumber
	NoSerialNumberFW
	NoSerialNumber12V
	NoSerialNumberFW12V
	IncorrectSerialNumber
	SettingsReadError
	SettingsVersionError
	SettingsLengthError
	SettingsChecksumError
	SettingsNotAvailable
	SettingsReadOnly
	SettingsStructureMismatch
	SettingsStructureTruncated
	SettingsDefaultsUsed
	CANSettingsNotAvailable
	CANFDSettingsNotAvailable
	LSFTCANSettingsNotAvailable
	SWCANSettingsNotAvailable
	BaudrateNotFound
	UnexpectedNetworkType
	DeviceFirmwareOutOfDate
	NoDeviceResponse
	MessageFormattingError
	CANFDNotSupported
	RTRNotSupported
	DeviceDisconnected
	OnlineNotSupported
	TerminationNotSupportedDevice
	TerminationNotSupportedNetwork
	AnotherInTerminationGroupEnabled
	EthPhyRegisterControlNotAvailable
	DiskNotSupported
	EOFReached
	AtomicOperationRetried
	AtomicOperationCompletedNonatomically
)

// Transport errors.
const (
	FailedToRead Type = iota + 200
	FailedToWrite
	DriverFailedToOpen
	DriverFailedToClose
	PacketChecksumError
	TransmitBufferFull
	DeviceInUse
	PCAPCouldNotStart
	PCAPCouldNotFindDevices
	PacketDecodingError
)

// Other.
const (
	TooManyEvents Type = iota + 300
	Unknown
	InvalidError

	// Any matches every type when used in an EventFilter.
	Any Type = 0xFFFFFFFF
)

// Severity is presentation-level; the only code that branches on it is
// EventManager.GetLastError (which picks Error events) and
// EventManager.DowngradeErrors (which rewrites Error to Warning).
type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
	// AnySeverity matches every severity when used in an EventFilter.
	AnySeverity Severity = 0xFF
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Any"
	}
}

// Event is a single structured fault or notice. It is immutable except for
// its Severity, which downgradeErrors may rewrite from Error to Warning.
type Event struct {
	Type      Type
	Severity  Severity
	Timestamp time.Time
	// Serial is the short alphanumeric serial of the device this event
	// concerns, or empty for library/API-level events.
	Serial string
}

// NewEvent stamps the current wall-clock time onto a new Event.
func NewEvent(t Type, severity Severity, serial string) Event {
	return Event{Type: t, Severity: severity, Timestamp: time.Now(), Serial: serial}
}

// Description returns the fixed, byte-for-byte human-readable description of
// the event's Type, API-compatible with the source this library was
// distilled from.
func (e Event) Description() string {
	return DescriptionForType(e.Type)
}

// String renders a one-line summary: a device-or-API prefix, the severity
// word, and the description.
func (e Event) String() string {
	prefix := "API"
	if e.Serial != "" {
		prefix = e.Serial
	}
	return fmt.Sprintf("%s %s: %s", prefix, e.Severity, e.Description())
}

// IsForDevice reports whether the event concerns the device with the given
// serial. An empty serial, on either side, never matches.
func (e Event) IsForDevice(serial string) bool {
	if serial == "" || e.Serial == "" {
		return false
	}
	return e.Serial == serial
}

// Filter selects events for EventManager.Get and DowngradeErrors. Every
// non-Any field specified must match for an event to be selected.
type Filter struct {
	Type     Type
	Severity Severity
	// Serial, if non-empty, restricts matches to events for that device.
	Serial string
	// MatchOnDevicePtr restricts matches to events carrying any device serial
	// at all (as opposed to bare API-level events).
	MatchOnDevicePtr bool
}

// AnyFilter matches every event.
func AnyFilter() Filter { return Filter{Type: Any, Severity: AnySeverity} }

// Match reports whether the event satisfies every specified field of f.
func (f Filter) Match(e Event) bool {
	if f.Type != Any && f.Type != e.Type {
		return false
	}
	if f.MatchOnDevicePtr && e.Serial == "" {
		return false
	}
	if f.Severity != AnySeverity && f.Severity != e.Severity {
		return false
	}
	if f.Serial != "" && !e.IsForDevice(f.Serial) {
		return false
	}
	return true
}

// Reporter is the capability threaded through every component for uniform
// event emission: report(type, severity). A Reporter is always already bound
// to a thread ring and, optionally, a device serial; see
// EventManager.Reporter.
type Reporter func(t Type, severity Severity)
