package command

import (
	"testing"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileSearch(t *testing.T) {
	ts := wire.Timestamp{
		CalendarDate: wire.CalendarDate{Day: 18, Month: 1, Year: 2026},
		ClockTime:    wire.ClockTime{Hour: 0, Minute: 30, Second: 0},
	}
	body := BuildFileSearch(0x0305, 0, ts, SearchBackward)
	require.Len(t, body, 15)
	assert.Equal(t, []byte{0x03, 0x05, 0xF0, 0x08}, body[:4])
	assert.Equal(t, []byte{18, 1, 26, 0, 30, 0}, body[8:14])
	assert.Equal(t, SearchBackward, body[14])
}

func TestParseFileSearchResponse(t *testing.T) {
	// §8 scenario 5: SEARCH for from_dt returns record 100.
	body := []byte{byte(proto.FileExtSearch)}
	body = append(body, 0x03, 0x05, 0xF0, 0x08)
	body = append(body, 0x00, 0x00, 0x00, 0x64) // start_record = 100
	body = append(body, 18, 1, 26, 0, 30, 0)    // exact dt echoed back
	body = append(body, SearchExactMatch)

	raw := frame.Build(1, proto.CmdFileAccess, body)
	f, err := frame.Parse(raw)
	require.NoError(t, err)

	res, err := ParseFileSearchResponse(f)
	require.NoError(t, err)
	assert.EqualValues(t, 100, res.StartRecord)
	assert.Equal(t, uint8(18), res.DateTime.Day)
	assert.Equal(t, 2026, res.DateTime.Year)
	assert.Equal(t, SearchExactMatch, res.Result)
}
