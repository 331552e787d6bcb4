package command

import (
	"encoding/binary"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// BuildFileInfo assembles a FILE_ACCESS/FILE_INFO request body for the
// given survey's interval-record file (§4.3, §3 ProfileFileAddress).
func BuildFileInfo(survey uint16) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, registers.ProfileFileAddress(survey))
	return body
}

// ParseFileInfoResponse decodes a FILE_ACCESS/FILE_INFO response into a
// FileInfo (§4.3). IntervalSeconds and ChannelsCount are left zero here;
// the profile engine fills them in from the separate info registers
// (§4.5 step 2).
func ParseFileInfoResponse(f *frame.Frame) (registers.FileInfo, error) {
	var info registers.FileInfo

	body, err := expectCommand(f, proto.CmdFileAccess)
	if err != nil {
		return info, err
	}
	body, err = expectExt(body, proto.FileExtInfo)
	if err != nil {
		return info, err
	}
	// reg_addr(4) | start_record(4) | records_count(4) | record_size(2) | type(1) | name
	if len(body) < 4+4+4+2+1 {
		return info, proto.ResponseWrongLength
	}
	cursor := 4 // reg_addr echo, not needed by the caller
	info.StartRecord = int32(binary.BigEndian.Uint32(body[cursor:]))
	cursor += 4
	info.RecordsCount = int32(binary.BigEndian.Uint32(body[cursor:]))
	cursor += 4
	info.RecordSize = int16(binary.BigEndian.Uint16(body[cursor:]))
	cursor += 2
	info.Type = body[cursor]
	cursor++

	name, _, err := wire.Decode(wire.String, body, cursor, len(body)-cursor)
	if err != nil {
		return info, err
	}
	info.Name = name.(string)
	return info, nil
}
