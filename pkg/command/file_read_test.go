package command

import (
	"encoding/binary"
	"testing"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func be32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

func TestBuildFileRead(t *testing.T) {
	body := BuildFileRead(0x0305, 100, 45, 0, 13)
	require.Len(t, body, 14)
	assert.Equal(t, []byte{0x03, 0x05, 0xF0, 0x08}, body[:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x64}, body[4:8])
	assert.Equal(t, []byte{0x00, 0x2D}, body[8:10]) // 45
	assert.Equal(t, []byte{0x00, 0x00}, body[10:12])
	assert.Equal(t, []byte{0x00, 0x0D}, body[12:14])
}

func TestParseFileReadResponseTwoChannelsWithPadding(t *testing.T) {
	// §8 scenario 5 shape: 2 channels, record_size = 13, so each 13-byte
	// record carries 8 bytes of channel data and 5 bytes of padding the
	// decoder must skip.
	channels := []wire.Type{wire.Long, wire.Long}

	body := []byte{byte(proto.FileExtRead)}
	body = append(body, 0x03, 0x05, 0xF0, 0x08)
	body = append(body, 0x00, 0x00, 0x00, 0x64) // start_record = 100
	body = append(body, 0x00, 0x02)             // records_count = 2
	body = append(body, 0x00, 0x00)             // record_offset = 0
	body = append(body, 0x00, 0x0D)             // record_size = 13

	body = append(body, be32(100)...)
	body = append(body, be32(200)...)
	body = append(body, 0, 0, 0, 0, 0) // 5 bytes padding

	body = append(body, be32(101)...)
	body = append(body, be32(201)...)
	body = append(body, 0, 0, 0, 0, 0)

	raw := frame.Build(1, proto.CmdFileAccess, body)
	f, err := frame.Parse(raw)
	require.NoError(t, err)

	hdr, fields, channelsCount, err := ParseFileReadResponse(f, channels)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hdr.RecordsCount)
	assert.EqualValues(t, 13, hdr.RecordSize)
	assert.Equal(t, 2, channelsCount)
	require.Len(t, fields, 4)
	assert.Equal(t, int32(100), fields[0])
	assert.Equal(t, int32(200), fields[1])
	assert.Equal(t, int32(101), fields[2])
	assert.Equal(t, int32(201), fields[3])
}

func TestParseFileReadResponseRecalibratesOnShortRecord(t *testing.T) {
	// record_size (6) is too small to hold both declared 4-byte channels;
	// the decoder recalibrates to 1 channel per record and applies that
	// to every record in the response.
	channels := []wire.Type{wire.Long, wire.Long}

	body := []byte{byte(proto.FileExtRead)}
	body = append(body, 0x03, 0x05, 0xF0, 0x08)
	body = append(body, 0x00, 0x00, 0x00, 0x64)
	body = append(body, 0x00, 0x02) // records_count = 2
	body = append(body, 0x00, 0x00)
	body = append(body, 0x00, 0x06) // record_size = 6

	body = append(body, be32(7)...)
	body = append(body, 0, 0) // 2 bytes padding to fill record_size
	body = append(body, be32(8)...)
	body = append(body, 0, 0)

	raw := frame.Build(1, proto.CmdFileAccess, body)
	f, err := frame.Parse(raw)
	require.NoError(t, err)

	hdr, fields, channelsCount, err := ParseFileReadResponse(f, channels)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hdr.RecordsCount)
	assert.Equal(t, 1, channelsCount)
	require.Len(t, fields, 2)
	assert.Equal(t, int32(7), fields[0])
	assert.Equal(t, int32(8), fields[1])
}

func TestParseFileReadResponseZeroRecords(t *testing.T) {
	channels := []wire.Type{wire.Long}
	body := []byte{byte(proto.FileExtRead)}
	body = append(body, 0x03, 0x05, 0xF0, 0x08)
	body = append(body, 0x00, 0x00, 0x00, 0x64)
	body = append(body, 0x00, 0x00) // records_count = 0
	body = append(body, 0x00, 0x00)
	body = append(body, 0x00, 0x0D)

	raw := frame.Build(1, proto.CmdFileAccess, body)
	f, err := frame.Parse(raw)
	require.NoError(t, err)

	hdr, fields, _, err := ParseFileReadResponse(f, channels)
	require.NoError(t, err)
	assert.EqualValues(t, 0, hdr.RecordsCount)
	assert.Empty(t, fields)
}
