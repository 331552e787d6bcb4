package command

import (
	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
)

// BuildLogin assembles a LOGIN request body: "username,password\x00",
// both ASCII (§4.3).
func BuildLogin(username, password string) []byte {
	body := make([]byte, 0, len(username)+1+len(password)+1)
	body = append(body, username...)
	body = append(body, ',')
	body = append(body, password...)
	body = append(body, 0x00)
	return body
}

// ParseLoginResponse checks the LOGIN response per §4.3: the framed
// envelope carries no body (the whole unstuffed frame is 16 bytes), and
// the byte at offset 12 — captured as f.Command by package frame — is
// ACK on success, anything else LOGIN_FAILED.
func ParseLoginResponse(f *frame.Frame) error {
	if len(f.Body) != 0 {
		return proto.ResponseWrongLength
	}
	if byte(f.Command) == proto.RespACK {
		return nil
	}
	return proto.LoginFailed
}
