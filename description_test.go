package icsnet

import "testing"

func TestDescriptionForTypeKnownValues(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{InvalidNeoDevice, "The provided neodevice_t object was invalid."},
		{Timeout, "The timeout was reached."},
		{CANFDNotSupported, "This device does not support CANFD."},
		{PacketDecodingError, "There was an error decoding a packet from the device."},
		{TooManyEvents, "Too many events have occurred. The list has been truncated."},
		{Unknown, "An unknown internal error occurred."},
	}
	for _, c := range cases {
		if got := DescriptionForType(c.typ); got != c.want {
			t.Errorf("DescriptionForType(%d) = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestDescriptionForTypeFallsBackForUnknownValues(t *testing.T) {
	fallback := DescriptionForType(Type(0xDEADBEEF))
	if fallback == "" {
		t.Fatalf("expected a non-empty fallback description")
	}
	if got := DescriptionForType(InvalidError); got != fallback {
		t.Fatalf("expected InvalidError to use the same fallback description, got %q want %q", got, fallback)
	}
}

// Every named Type other than the sentinel Any and the unhandled
// InvalidError must resolve to its own description rather than silently
// falling back to the generic one, or a future renumbering would go
// unnoticed.
func TestDescriptionForTypeHasNoUnintentionalFallbacks(t *testing.T) {
	fallback := DescriptionForType(Type(0xDEADBEEF))

	named := []Type{
		InvalidNeoDevice, RequiredParameterNull, BufferInsufficient, OutputTruncated,
		ParameterOutOfRange, DeviceCurrentlyOpen, DeviceCurrentlyClosed, DeviceCurrentlyOnline,
		DeviceCurrentlyOffline, DeviceCurrentlyPolling, DeviceNotCurrentlyPolling,
		UnsupportedTXNetwork, MessageMaxLengthExceeded, ValueNotYetPresent, Timeout,

		PollingMessageOverflow, NoSerialNumber, NoSerialNumberFW, NoSerialNumber12V,
		NoSerialNumberFW12V, IncorrectSerialNumber, SettingsReadError, SettingsVersionError,
		SettingsLengthError, SettingsChecksumError, SettingsNotAvailable, SettingsReadOnly,
		SettingsStructureMismatch, SettingsStructureTruncated, SettingsDefaultsUsed,
		CANSettingsNotAvailable, CANFDSettingsNotAvailable, LSFTCANSettingsNotAvailable,
		SWCANSettingsNotAvailable, BaudrateNotFound, UnexpectedNetworkType,
		DeviceFirmwareOutOfDate, NoDeviceResponse, MessageFormattingError, CANFDNotSupported,
		RTRNotSupported, DeviceDisconnected, OnlineNotSupported, TerminationNotSupportedDevice,
		TerminationNotSupportedNetwork, AnotherInTerminationGroupEnabled,
		EthPhyRegisterControlNotAvailable, DiskNotSupported, EOFReached,
		AtomicOperationRetried, AtomicOperationCompletedNonatomically,

		FailedToRead, FailedToWrite, DriverFailedToOpen, DriverFailedToClose,
		PacketChecksumError, TransmitBufferFull, DeviceInUse, PCAPCouldNotStart,
		PCAPCouldNotFindDevices, PacketDecodingError,

		TooManyEvents, Unknown,
	}

	for _, typ := range named {
		if got := DescriptionForType(typ); got == fallback {
			t.Errorf("Type %d unexpectedly resolves to the generic fallback description", typ)
		}
	}
}
