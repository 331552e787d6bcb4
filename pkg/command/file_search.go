package command

import (
	"encoding/binary"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// Search direction for FILE_ACCESS/FILE_SEARCH's dir byte (§4.3).
const (
	SearchBackward uint8 = 0
	SearchForward  uint8 = 1
)

// SearchResult is the decoded FILE_ACCESS/FILE_SEARCH response (§4.3).
type SearchResult struct {
	StartRecord int32
	DateTime    wire.Timestamp
	Result      uint8
}

// Result codes for SearchResult.Result (§4.3).
const (
	SearchExactMatch     uint8 = 0
	SearchHitEndOfFile   uint8 = 1
	SearchClosestMatch   uint8 = 2
	SearchNoTimestamp    uint8 = 3
	SearchNoDataRecorded uint8 = 4
)

// BuildFileSearch assembles a FILE_ACCESS/FILE_SEARCH request body. The
// six date/time bytes (day, month, year, hour, minute, second) are in
// the same order as §3's DATE_TIME wire layout (§4.2).
func BuildFileSearch(survey uint16, startRecord int32, ts wire.Timestamp, dir uint8) []byte {
	body := make([]byte, 4+4+6+1)
	binary.BigEndian.PutUint32(body, registers.ProfileFileAddress(survey))
	binary.BigEndian.PutUint32(body[4:], uint32(startRecord))
	body[8] = ts.Day
	body[9] = ts.Month
	body[10] = byte(ts.Year - 2000)
	body[11] = ts.Hour
	body[12] = ts.Minute
	body[13] = ts.Second
	body[14] = dir
	return body
}

// ParseFileSearchResponse decodes a FILE_ACCESS/FILE_SEARCH response
// (§4.3).
func ParseFileSearchResponse(f *frame.Frame) (SearchResult, error) {
	var res SearchResult

	body, err := expectCommand(f, proto.CmdFileAccess)
	if err != nil {
		return res, err
	}
	body, err = expectExt(body, proto.FileExtSearch)
	if err != nil {
		return res, err
	}
	if len(body) < 4+4+6+1 {
		return res, proto.ResponseWrongLength
	}
	res.StartRecord = int32(binary.BigEndian.Uint32(body[4:]))
	res.DateTime = wire.Timestamp{
		CalendarDate: wire.CalendarDate{Day: body[8], Month: body[9], Year: 2000 + int(body[10])},
		ClockTime:    wire.ClockTime{Hour: body[11], Minute: body[12], Second: body[13]},
	}
	res.Result = body[14]
	return res, nil
}
