// Package command builds request bodies and parses response bodies for
// the handful of operations the driver issues: LOGIN, READ_REGISTER_EXT,
// and the three FILE_ACCESS extensions INFO/SEARCH/READ (§4.3 of the
// protocol specification). It sits between the frame envelope (package
// frame), the value codec (package wire), and the register data model
// (package registers); the session and profile engines are the only
// callers.
package command

import (
	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
)

// expectCommand implements correlation check (a) of §4.4: the response's
// command byte must echo want, or be CAN with an error byte following.
// Any other command byte is a correlation failure.
func expectCommand(f *frame.Frame, want proto.Command) ([]byte, error) {
	switch byte(f.Command) {
	case byte(want):
		return f.Body, nil
	case proto.RespCAN:
		if len(f.Body) == 0 {
			return nil, proto.ResponseWrongLength
		}
		return nil, proto.Code(f.Body[0])
	default:
		return nil, proto.RequestResponseCmdMismatch
	}
}

// expectExt implements correlation check (b): the next byte after the
// command must be the expected FILE_ACCESS extension.
func expectExt(body []byte, want proto.FileExt) ([]byte, error) {
	if len(body) == 0 {
		return nil, proto.ResponseWrongLength
	}
	if body[0] != byte(want) {
		return nil, proto.RequestResponseCmdMismatch
	}
	return body[1:], nil
}
