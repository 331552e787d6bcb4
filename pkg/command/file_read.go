package command

import (
	"encoding/binary"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// BuildFileRead assembles a FILE_ACCESS/FILE_READ request body (§4.3).
func BuildFileRead(survey uint16, startRecord int32, recordsCount, recordOffset, recordSize int16) []byte {
	body := make([]byte, 4+4+2+2+2)
	binary.BigEndian.PutUint32(body, registers.ProfileFileAddress(survey))
	binary.BigEndian.PutUint32(body[4:], uint32(startRecord))
	binary.BigEndian.PutUint16(body[8:], uint16(recordsCount))
	binary.BigEndian.PutUint16(body[10:], uint16(recordOffset))
	binary.BigEndian.PutUint16(body[12:], uint16(recordSize))
	return body
}

// ReadResult is the echoed header of a FILE_ACCESS/FILE_READ response
// (§4.3), ahead of the packed record data.
type ReadResult struct {
	StartRecord  int32
	RecordsCount int16
	RecordOffset int16
	RecordSize   int16
}

// ParseFileReadResponse decodes a FILE_ACCESS/FILE_READ response into a
// flat list of fields (record-major, channel-minor order) against the
// declared channel types, per §4.3's recalibration rule: if a record's
// channel sequence runs past record_size (or past the end of the
// payload) before every channel is decoded, the channel count reached
// there is adopted for every subsequent record and returned to the
// caller instead of len(channelTypes). This check applies only when
// record_size is positive; with a zero or negative record_size no
// recalibration happens, and a value that runs past the end of the
// payload fails the whole parse with the decode error.
func ParseFileReadResponse(f *frame.Frame, channelTypes []wire.Type) (ReadResult, []any, int, error) {
	var hdr ReadResult

	body, err := expectCommand(f, proto.CmdFileAccess)
	if err != nil {
		return hdr, nil, 0, err
	}
	body, err = expectExt(body, proto.FileExtRead)
	if err != nil {
		return hdr, nil, 0, err
	}
	if len(body) < 4+4+2+2+2 {
		return hdr, nil, 0, proto.ResponseWrongLength
	}

	cursor := 4 // reg_addr echo
	hdr.StartRecord = int32(binary.BigEndian.Uint32(body[cursor:]))
	cursor += 4
	hdr.RecordsCount = int16(binary.BigEndian.Uint16(body[cursor:]))
	cursor += 2
	hdr.RecordOffset = int16(binary.BigEndian.Uint16(body[cursor:]))
	cursor += 2
	hdr.RecordSize = int16(binary.BigEndian.Uint16(body[cursor:]))
	cursor += 2

	if hdr.RecordsCount <= 0 {
		return hdr, nil, len(channelTypes), nil
	}

	dataEnd := len(body)
	channelsPerRecord := len(channelTypes)
	fields := make([]any, 0, int(hdr.RecordsCount)*channelsPerRecord)

	for record := 0; record < int(hdr.RecordsCount); record++ {
		recordStart := cursor
		recordEnd := dataEnd
		if hdr.RecordSize > 0 {
			if recordStart+int(hdr.RecordSize) < recordEnd {
				recordEnd = recordStart + int(hdr.RecordSize)
			}
		}

		for ch := 0; ch < channelsPerRecord; ch++ {
			if hdr.RecordSize > 0 {
				if cursor >= recordEnd {
					channelsPerRecord = ch
					break
				}
				width := wire.FixedWidth(channelTypes[ch])
				if width > 0 && cursor+width > recordEnd {
					channelsPerRecord = ch
					break
				}
			}

			valueLen := recordEnd - cursor
			if hdr.RecordSize <= 0 {
				valueLen = len(body) - cursor
			}
			value, consumed, decErr := wire.Decode(channelTypes[ch], body, cursor, valueLen)
			if decErr != nil {
				return hdr, nil, 0, decErr
			}
			cursor += consumed
			fields = append(fields, value)
		}

		if hdr.RecordSize > 0 && cursor < recordEnd {
			cursor = recordEnd
		}
	}

	return hdr, fields, channelsPerRecord, nil
}
