package proto

import "fmt"

// Code is the one-byte protocol error taxonomy of §7. It appears as the
// per-register error byte in READ_REGISTER_EXT responses and as the byte
// following a CAN response marker.
type Code uint8

const (
	None                       Code = 0x00
	CanNotWrite                Code = 0x01
	UnimplementedOperation     Code = 0x02
	RegisterNotFound           Code = 0x03
	AccessDenied               Code = 0x04
	RequestWrongLength         Code = 0x05
	BadTypeCodeInternalError   Code = 0x06
	DataNotReadyYet            Code = 0x07
	OutOfRange                 Code = 0x08
	NotLoggedIn                Code = 0x09
	RequestCRCError            Code = 0x0A
	ResponseCRCError           Code = 0x0B
	RequestResponseCmdMismatch Code = 0x0C
	RequestResponseLenMismatch Code = 0x0D
	LoginFailed                Code = 0x0E
	LogoutFailed               Code = 0x0F
	GetMeterAttentionFailed    Code = 0x10
	ResponseWrongLength        Code = 0x11
	UnimplementedDataType      Code = 0x12
)

var codeDescription = map[Code]string{
	None:                       "success",
	CanNotWrite:                "meter refused write",
	UnimplementedOperation:     "command unknown to meter",
	RegisterNotFound:           "register address unknown",
	AccessDenied:               "needs higher authorization level",
	RequestWrongLength:         "local request length check failed",
	BadTypeCodeInternalError:   "bad type code (internal error)",
	DataNotReadyYet:            "data not ready yet, retryable",
	OutOfRange:                 "value out of range",
	NotLoggedIn:                "not logged in, must re-login",
	RequestCRCError:            "meter saw a bad CRC on the request",
	ResponseCRCError:           "host saw a bad CRC on the response",
	RequestResponseCmdMismatch: "response command does not correlate with request",
	RequestResponseLenMismatch: "response length does not correlate with request",
	LoginFailed:                "login failed",
	LogoutFailed:               "logout failed",
	GetMeterAttentionFailed:    "wake-up sequence failed",
	ResponseWrongLength:        "response frame has the wrong length",
	UnimplementedDataType:      "unknown wire type code",
}

// Error implements the error interface so a Code can be returned and
// compared directly (errors.Is works via ==) without wrapping.
func (c Code) Error() string {
	if desc, ok := codeDescription[c]; ok {
		return fmt.Sprintf("edmi: %s (0x%02X)", desc, uint8(c))
	}
	return fmt.Sprintf("edmi: unknown protocol error (0x%02X)", uint8(c))
}

// IsRetryable reports whether the meter may succeed if the same request
// is issued again without any other corrective action.
func (c Code) IsRetryable() bool {
	return c == DataNotReadyYet
}
