package icsnet

// Description strings are reproduced byte-for-byte from the source material
// this library's event taxonomy was distilled from, for API compatibility
// with existing tooling that matches on description text.
const (
	descInvalidNeoDevice        = "The provided neodevice_t object was invalid."
	descRequiredParameterNull   = "A required parameter was NULL."
	descOutputTruncated         = "The output was too large for the provided buffer and has been truncated."
	descBufferInsufficient      = "The provided buffer was insufficient. No data was written."
	descParameterOutOfRange     = "A parameter was out of range."
	descDeviceCurrentlyOpen     = "The device is currently open."
	descDeviceCurrentlyClosed   = "The device is currently closed."
	descDeviceCurrentlyOnline   = "The device is currently online."
	descDeviceCurrentlyOffline  = "The device is currently offline."
	descDeviceCurrentlyPolling  = "The device is currently polling for messages."
	descDeviceNotCurrentlyPolling = "The device is not currently polling for messages."
	descUnsupportedTXNetwork    = "Message network is not a supported TX network."
	descMessageMaxLengthExceeded = "The message was too long."
	descValueNotYetPresent      = "The value is not yet present."
	descTimeout                 = "The timeout was reached."

	descPollingMessageOverflow = "Too many messages have been recieved for the polling message buffer, some have been lost!"
	descNoSerialNumberFW12V    = "Communication could not be established with the device. Perhaps it is not powered with 12 volts?"
	descNoSerialNumberFW       = "Communication could not be established with the device. Perhaps it is not powered?"
	descNoSerialNumber12V      = "Communication could not be established with the device. Perhaps it is not powered with 12 volts or requires a firmware update using Vehicle Spy."
	descNoSerialNumber         = "Communication could not be established with the device. Perhaps it is not powered or requires a firmware update using Vehicle Spy."
	descIncorrectSerialNumber  = "The device did not return the expected serial number!"
	descSettingsRead           = "The device settings could not be read."
	descSettingsVersion        = "The settings version is incorrect, please update your firmware with neoVI Explorer."
	descSettingsLength         = "The settings length is incorrect, please update your firmware with neoVI Explorer."
	descSettingsChecksum       = "The settings checksum is incorrect, attempting to set defaults may remedy this issue."
	descSettingsNotAvailable   = "Settings are not available for this device."
	descSettingsReadOnly       = "Settings are read-only for this device."
	descCANSettingsNotAvailable    = "CAN settings are not available for this device."
	descCANFDSettingsNotAvailable  = "CANFD settings are not available for this device."
	descLSFTCANSettingsNotAvailable = "LSFTCAN settings are not available for this device."
	descSWCANSettingsNotAvailable   = "SWCAN settings are not available for this device."
	descBaudrateNotFound       = "The baudrate was not found."
	descUnexpectedNetworkType  = "The network type was not found."
	descDeviceFirmwareOutOfDate = "The device firmware is out of date. New API functionality may not be supported."
	descSettingsStructureMismatch  = "Unexpected settings structure for this device."
	descSettingsStructureTruncated = "Settings structure is longer than the device supports and will be truncated."
	descNoDeviceResponse       = "Expected a response from the device but none were found."
	descMessageFormatting      = "The message was not properly formed."
	descCANFDNotSupported      = "This device does not support CANFD."
	descRTRNotSupported        = "RTR is not supported with CANFD."
	descDeviceDisconnected     = "The device was disconnected."
	descOnlineNotSupported     = "This device does not support going online."
	descTerminationNotSupportedDevice  = "This device does not support software selectable termination."
	descTerminationNotSupportedNetwork = "This network does not support software selectable termination on this device."
	descAnotherInTerminationGroupEnabled = "A mutually exclusive network already has termination enabled."
	descEthPhyRegisterControlNotAvailable = "Ethernet PHY register control is not available for this device."
	descDiskNotSupported       = "This device does not support accessing the specified disk."
	descEOFReached             = "The requested length exceeds the available data from this disk."
	descSettingsDefaultsUsed   = "The device settings could not be loaded, the default settings have been applied."
	descAtomicOperationRetried = "An operation failed to be atomically completed, but will be retried."
	descAtomicOperationCompletedNonatomically = "An ideally-atomic operation was completed nonatomically."

	descFailedToRead            = "A read operation failed."
	descFailedToWrite           = "A write operation failed."
	descDriverFailedToOpen      = "The device driver encountered a low-level error while opening the device."
	descDriverFailedToClose     = "The device driver encountered a low-level error while closing the device."
	descPacketChecksumError     = "There was a checksum error while decoding a packet. The packet was dropped."
	descTransmitBufferFull      = "The transmit buffer is full and the device is set to non-blocking."
	descDeviceInUse             = "The device is currently in use by another program."
	descPCAPCouldNotStart       = "The PCAP driver could not be started. Ethernet devices will not be found."
	descPCAPCouldNotFindDevices = "The PCAP driver failed to find devices. Ethernet devices will not be found."
	descPacketDecoding          = "There was an error decoding a packet from the device."

	descTooManyEvents = "Too many events have occurred. The list has been truncated."
	descUnknown       = "An unknown internal error occurred."
	descInvalid       = "An invalid internal error occurred."
)

// DescriptionForType returns the canonical description for t, or a fallback
// for any value outside the closed enumeration.
func DescriptionForType(t Type) string {
	switch t {
	// API errors
	case InvalidNeoDevice:
		return descInvalidNeoDevice
	case RequiredParameterNull:
		return descRequiredParameterNull
	case BufferInsufficient:
		return descBufferInsufficient
	case OutputTruncated:
		return descOutputTruncated
	case ParameterOutOfRange:
		return descParameterOutOfRange
	case DeviceCurrentlyOpen:
		return descDeviceCurrentlyOpen
	case DeviceCurrentlyClosed:
		return descDeviceCurrentlyClosed
	case DeviceCurrentlyOnline:
		return descDeviceCurrentlyOnline
	case DeviceCurrentlyOffline:
		return descDeviceCurrentlyOffline
	case DeviceCurrentlyPolling:
		return descDeviceCurrentlyPolling
	case DeviceNotCurrentlyPolling:
		return descDeviceNotCurrentlyPolling
	case UnsupportedTXNetwork:
		return descUnsupportedTXNetwork
	case MessageMaxLengthExceeded:
		return descMessageMaxLengthExceeded
	case ValueNotYetPresent:
		return descValueNotYetPresent
	case Timeout:
		return descTimeout

	// Device errors
	case PollingMessageOverflow:
		return descPollingMessageOverflow
	case NoSerialNumber:
		return descNoSerialNumber
	case NoSerialNumberFW:
		return descNoSerialNumberFW
	case NoSerialNumber12V:
		return descNoSerialNumber12V
	case NoSerialNumberFW12V:
		return descNoSerialNumberFW12V
	case IncorrectSerialNumber:
		return descIncorrectSerialNumber
	case SettingsReadError:
		return descSettingsRead
	case SettingsVersionError:
		return descSettingsVersion
	case SettingsLengthError:
		return descSettingsLength
	case SettingsChecksumError:
		return descSettingsChecksum
	case SettingsNotAvailable:
		return descSettingsNotAvailable
	case SettingsReadOnly:
		return descSettingsReadOnly
	case SettingsStructureMismatch:
		return descSettingsStructureMismatch
	case SettingsStructureTruncated:
		return descSettingsStructureTruncated
	case SettingsDefaultsUsed:
		return descSettingsDefaultsUsed
	case CANSettingsNotAvailable:
		return descCANSettingsNotAvailable
	case CANFDSettingsNotAvailable:
		return descCANFDSettingsNotAvailable
	case LSFTCANSettingsNotAvailable:
		return descLSFTCANSettingsNotAvailable
	case SWCANSettingsNotAvailable:
		return descSWCANSettingsNotAvailable
	case BaudrateNotFound:
		return descBaudrateNotFound
	case UnexpectedNetworkType:
		return descUnexpectedNetworkType
	case DeviceFirmwareOutOfDate:
		return descDeviceFirmwareOutOfDate
	case NoDeviceResponse:
		return descNoDeviceResponse
	case MessageFormattingError:
		return descMessageFormatting
	case CANFDNotSupported:
		return descCANFDNotSupported
	case RTRNotSupported:
		return descRTRNotSupported
	case DeviceDisconnected:
		return descDeviceDisconnected
	case OnlineNotSupported:
		return descOnlineNotSupported
	case TerminationNotSupportedDevice:
		return descTerminationNotSupportedDevice
	case TerminationNotSupportedNetwork:
		return descTerminationNotSupportedNetwork
	case AnotherInTerminationGroupEnabled:
		return descAnotherInTerminationGroupEnabled
	case EthPhyRegisterControlNotAvailable:
		return descEthPhyRegisterControlNotAvailable
	case DiskNotSupported:
		return descDiskNotSupported
	case EOFReached:
		return descEOFReached
	case AtomicOperationRetried:
		return descAtomicOperationRetried
	case AtomicOperationCompletedNonatomically:
		return descAtomicOperationCompletedNonatomically

	// Transport errors
	case FailedToRead:
		return descFailedToRead
	case FailedToWrite:
		return descFailedToWrite
	case DriverFailedToOpen:
		return descDriverFailedToOpen
	case DriverFailedToClose:
		return descDriverFailedToClose
	case PacketChecksumError:
		return descPacketChecksumError
	case TransmitBufferFull:
		return descTransmitBufferFull
	case DeviceInUse:
		return descDeviceInUse
	case PCAPCouldNotStart:
		return descPCAPCouldNotStart
	case PCAPCouldNotFindDevices:
		return descPCAPCouldNotFindDevices
	case PacketDecodingError:
		return descPacketDecoding

	// Other
	case TooManyEvents:
		return descTooManyEvents
	case Unknown:
		return descUnknown
	default:
		return descInvalid
	}
}
