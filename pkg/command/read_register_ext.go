package command

import (
	"encoding/binary"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// BuildReadRegisterExt assembles a READ_REGISTER_EXT request body: the
// fixed sentinel followed by each register's address (§4.3).
func BuildReadRegisterExt(regs []registers.Register) []byte {
	body := make([]byte, 4+4*len(regs))
	binary.BigEndian.PutUint32(body, proto.ReadRegisterExtSentinel)
	for i, r := range regs {
		binary.BigEndian.PutUint32(body[4+4*i:], r.Address)
	}
	return body
}

// ParseReadRegisterExtResponse decodes a READ_REGISTER_EXT response
// against the registers requested, in order, per §4.3's per-register
// error-byte rules and §9's resolution of the non-NONE/non-NOT_FOUND
// case: advance value_len unless doing so would overflow the payload,
// in which case abort and report that error for the whole call.
//
// Results are always returned in request order, even when the call
// aborts partway through: the caller sees exactly how far decoding got.
func ParseReadRegisterExtResponse(f *frame.Frame, regs []registers.Register) ([]registers.Result, error) {
	body, err := expectCommand(f, proto.CmdReadRegisterExt)
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, proto.ResponseWrongLength
	}
	if binary.BigEndian.Uint32(body) != proto.ReadRegisterExtSentinel {
		return nil, proto.RequestResponseCmdMismatch
	}

	cursor := 4
	results := make([]registers.Result, 0, len(regs))
	for _, reg := range regs {
		if cursor >= len(body) {
			return results, proto.ResponseWrongLength
		}
		errByte := body[cursor]
		cursor++

		switch proto.Code(errByte) {
		case proto.None:
			value, consumed, decErr := wire.Decode(reg.Type, body, cursor, reg.ValueLen)
			if decErr != nil {
				return results, decErr
			}
			cursor += consumed
			results = append(results, registers.Result{Register: reg, Value: value})

		case proto.RegisterNotFound:
			results = append(results, registers.Result{Register: reg, Err: proto.RegisterNotFound})

		default:
			code := proto.Code(errByte)
			if cursor+reg.ValueLen > len(body) {
				return results, code
			}
			cursor += reg.ValueLen
			results = append(results, registers.Result{Register: reg, Err: code})
		}
	}
	return results, nil
}
