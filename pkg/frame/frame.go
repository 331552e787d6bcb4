// Package frame implements the EDMI frame envelope: byte-stuffing,
// CRC-CCITT computation/verification, and building/parsing the fixed
// header (§3, §4.1 of the protocol specification).
//
// The header layout, once unstuffed, is:
//
//	STX(1) | 'E'(1) | meterSerial(4 BE) | clientSerial(6) | command(1) | body...
//
// command-specific bodies (including the optional FILE_ACCESS extension
// byte) are interpreted by package command, not here.
package frame

import (
	"encoding/binary"

	"github.com/meterlink/edmidrv/internal/crc"
	"github.com/meterlink/edmidrv/pkg/proto"
)

// HeaderLen is the number of unstuffed bytes before the body begins:
// STX, E marker, 4-byte meter serial, 6-byte client serial, command.
const HeaderLen = 1 + 1 + 4 + 6 + 1

// escapeSet is E in §4.1: the bytes that must never appear unescaped
// past offset 0.
var escapeSet = [256]bool{
	proto.STX:  true,
	proto.ETX:  true,
	proto.DLE:  true,
	proto.XON:  true,
	proto.XOFF: true,
}

// corrector is K in §4.1.
const corrector = 0x40

// Frame is a decoded request or response envelope.
type Frame struct {
	MeterSerial  uint32
	ClientSerial [6]byte
	Command      proto.Command
	Body         []byte // everything after the command byte, CRC stripped
}

// Build assembles an outgoing frame: header + body + CRC, byte-stuffed,
// with ETX appended. It implements §4.1's ordering invariant: build,
// append CRC, stuff, append ETX.
func Build(meterSerial uint32, cmd proto.Command, body []byte) []byte {
	plain := make([]byte, 0, HeaderLen+len(body)+2)
	plain = append(plain, proto.STX, proto.EFrameMarker)
	var serialBuf [4]byte
	binary.BigEndian.PutUint32(serialBuf[:], meterSerial)
	plain = append(plain, serialBuf[:]...)
	plain = append(plain, proto.ClientSerial[:]...)
	plain = append(plain, byte(cmd))
	plain = append(plain, body...)

	sum := crc.Compute(plain)
	var crcBuf [2]byte
	binary.BigEndian.PutUint16(crcBuf[:], sum)
	plain = append(plain, crcBuf[:]...)

	return stuff(plain)
}

// stuff byte-stuffs plain (STX|header|body|CRC) and appends ETX. STX at
// offset 0 is never escaped (§4.1).
func stuff(plain []byte) []byte {
	out := make([]byte, 0, len(plain)+4)
	out = append(out, plain[0])
	for _, b := range plain[1:] {
		if escapeSet[b] {
			out = append(out, proto.DLE, b+corrector)
		} else {
			out = append(out, b)
		}
	}
	out = append(out, proto.ETX)
	return out
}

// unstuff reverses stuff on the region between STX (inclusive) and ETX
// (exclusive — callers strip ETX first per §4.1's receive ordering).
func unstuff(raw []byte) ([]byte, error) {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b == proto.DLE {
			i++
			if i >= len(raw) {
				return nil, proto.ResponseWrongLength
			}
			out = append(out, raw[i]-corrector)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Parse decodes a raw STX...ETX window as delivered by the transport
// (§4.6's read_framed): strip ETX, unstuff, verify CRC, then split the
// header from the body (§4.1's receive ordering).
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < 2 || raw[0] != proto.STX || raw[len(raw)-1] != proto.ETX {
		return nil, proto.ResponseWrongLength
	}
	unstuffed, err := unstuff(raw[:len(raw)-1])
	if err != nil {
		return nil, err
	}
	if len(unstuffed) < HeaderLen+2 {
		return nil, proto.ResponseWrongLength
	}

	payload := unstuffed[:len(unstuffed)-2]
	gotCRC := binary.BigEndian.Uint16(unstuffed[len(unstuffed)-2:])
	if crc.Compute(payload) != gotCRC {
		return nil, proto.ResponseCRCError
	}
	if payload[1] != proto.EFrameMarker {
		return nil, proto.ResponseWrongLength
	}

	f := &Frame{
		MeterSerial: binary.BigEndian.Uint32(payload[2:6]),
		Command:     proto.Command(payload[12]),
	}
	copy(f.ClientSerial[:], payload[6:12])
	f.Body = payload[HeaderLen:]
	return f, nil
}
