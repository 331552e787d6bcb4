// Package proto defines the wire-level vocabulary of the EDMI meter
// protocol: command codes, response markers, and the per-register /
// per-response error taxonomy (§3, §7 of the protocol specification).
package proto

// Command is the single byte identifying a request's purpose (§3).
type Command byte

const (
	CmdLogin              Command = 'L'
	CmdLogout             Command = 'X'
	CmdInfo               Command = 'I'
	CmdReadRegister       Command = 'R'
	CmdReadRegisterExt    Command = 'M'
	CmdReadMultiRegExt    Command = 'A'
	CmdFileAccess         Command = 'F'
	CmdGetMeterAttention  Command = 0x1B
)

// File access extensions, the second byte of a FILE_ACCESS request/response.
type FileExt byte

const (
	FileExtInfo   FileExt = 'I'
	FileExtRead   FileExt = 'R'
	FileExtSearch FileExt = 'S'
)

// Response markers (§3): the first body byte of a response is either the
// echoed command (success shape) or CAN (failure shape, followed by one
// error byte).
const (
	RespACK byte = 0x06
	RespCAN byte = 0x18
)

// ReadRegisterExtSentinel is the fixed 32-bit marker that must appear
// right after the command byte in both a READ_REGISTER_EXT request and
// its response (§3 invariants, §4.3).
const ReadRegisterExtSentinel uint32 = 0x0000FFF1

// ClientSerial is the fixed 6-byte client identifier every request
// carries (§6).
var ClientSerial = [6]byte{0x01, 0x2B, 0x16, 0x68, 0xFF, 0xFF}

// EFrameMarker is the byte immediately following STX that identifies
// this protocol dialect ("E" = 0x45).
const EFrameMarker byte = 0x45

// Frame control bytes (§4.1).
const (
	STX   byte = 0x02
	ETX   byte = 0x03
	DLE   byte = 0x10
	XON   byte = 0x11
	XOFF  byte = 0x13
)

// WakeUp is the literal ASCII sequence prepended to the first request of
// a session (§4.4); it never gets a framed response of its own.
const WakeUp = "/?!\r\n"
