package efi

// Status models the EFI_STATUS word returned by every UEFI service call. A
// zero value indicates success. Words with the most significant bit set are
// errors; non-zero words with the bit clear are warnings.
type Status uintptr

// statusErrorBit flags a status word as an error.
const statusErrorBit = Status(1) << 63

// StatusSuccess indicates that the service call completed without incident.
const StatusSuccess = Status(0)

// Warning status codes.
const (
	WarnUnknownGlyph Status = iota + 1
	WarnDeleteFailure
	WarnWriteFailure
	WarnBufferTooSmall
	WarnStaleData
	WarnFileSystem
	WarnResetRequired
)

// Error status codes.
const (
	ErrLoadError Status = statusErrorBit | (iota + 1)
	ErrInvalidParameter
	ErrUnsupported
	ErrBadBufferSize
	ErrBufferTooSmall
	ErrNotReady
	ErrDeviceError
	ErrWriteProtected
	ErrOutOfResources
	ErrVolumeCorrupted
	ErrVolumeFull
	ErrNoMedia
	ErrMediaChanged
	ErrNotFound
	ErrAccessDenied
	ErrNoResponse
	ErrNoMapping
	ErrTimeout
	ErrNotStarted
	ErrAlreadyStarted
	ErrAborted
	ErrICMPError
	ErrTFTPError
	ErrProtocolError
	ErrIncompatibleVersion
	ErrSecurityViolation
	ErrCRCError
	ErrEndOfMedia
)

const (
	ErrEndOfFile Status = statusErrorBit | (iota + 31)
	ErrInvalidLanguage
	ErrCompromisedData
	ErrIPAddressConflict
	ErrHTTPError
)

// IsError returns true if st indicates a failed service call.
func (st Status) IsError() bool {
	return st&statusErrorBit != 0
}

// IsWarning returns true if st indicates a call that succeeded with a
// warning.
func (st Status) IsWarning() bool {
	return st != StatusSuccess && !st.IsError()
}

// String returns the UEFI name of the status code.
func (st Status) String() string {
	switch st {
	case StatusSuccess:
		return "EFI_SUCCESS"
	case WarnUnknownGlyph:
		return "EFI_WARN_UNKNOWN_GLYPH"
	case WarnDeleteFailure:
		return "EFI_WARN_DELETE_FAILURE"
	case WarnWriteFailure:
		return "EFI_WARN_WRITE_FAILURE"
	case WarnBufferTooSmall:
		return "EFI_WARN_BUFFER_TOO_SMALL"
	case WarnStaleData:
		return "EFI_WARN_STALE_DATA"
	case WarnFileSystem:
		return "EFI_WARN_FILE_SYSTEM"
	case WarnResetRequired:
		return "EFI_WARN_RESET_REQUIRED"
	case ErrLoadError:
		return "EFI_LOAD_ERROR"
	case ErrInvalidParameter:
		return "EFI_INVALID_PARAMETER"
	case ErrUnsupported:
		return "EFI_UNSUPPORTED"
	case ErrBadBufferSize:
		return "EFI_BAD_BUFFER_SIZE"
	case ErrBufferTooSmall:
		return "EFI_BUFFER_TOO_SMALL"
	case ErrNotReady:
		return "EFI_NOT_READY"
	case ErrDeviceError:
		return "EFI_DEVICE_ERROR"
	case ErrWriteProtected:
		return "EFI_WRITE_PROTECTED"
	case ErrOutOfResources:
		return "EFI_OUT_OF_RESOURCES"
	case ErrVolumeCorrupted:
		return "EFI_VOLUME_CORRUPTED"
	case ErrVolumeFull:
		return "EFI_VOLUME_FULL"
	case ErrNoMedia:
		return "EFI_NO_MEDIA"
	case ErrMediaChanged:
		return "EFI_MEDIA_CHANGED"
	case ErrNotFound:
		return "EFI_NOT_FOUND"
	case ErrAccessDenied:
		return "EFI_ACCESS_DENIED"
	case ErrNoResponse:
		return "EFI_NO_RESPONSE"
	case ErrNoMapping:
		return "EFI_NO_MAPPING"
	case ErrTimeout:
		return "EFI_TIMEOUT"
	case ErrNotStarted:
		return "EFI_NOT_STARTED"
	case ErrAlreadyStarted:
		return "EFI_ALREADY_STARTED"
	case ErrAborted:
		return "EFI_ABORTED"
	case ErrICMPError:
		return "EFI_ICMP_ERROR"
	case ErrTFTPError:
		return "EFI_TFTP_ERROR"
	case ErrProtocolError:
		return "EFI_PROTOCOL_ERROR"
	case ErrIncompatibleVersion:
		return "EFI_INCOMPATIBLE_VERSION"
	case ErrSecurityViolation:
		return "EFI_SECURITY_VIOLATION"
	case ErrCRCError:
		return "EFI_CRC_ERROR"
	case ErrEndOfMedia:
		return "EFI_END_OF_MEDIA"
	case ErrEndOfFile:
		return "EFI_END_OF_FILE"
	case ErrInvalidLanguage:
		return "EFI_INVALID_LANGUAGE"
	case ErrCompromisedData:
		return "EFI_COMPROMISED_DATA"
	case ErrIPAddressConflict:
		return "EFI_IP_ADDRESS_CONFLICT"
	case ErrHTTPError:
		return "EFI_HTTP_ERROR"
	default:
		return "EFI_UNKNOWN_STATUS"
	}
}
