package scaling

import (
	"testing"

	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec(survey uint16, interval uint32, channels []registers.FileChannelInfo) registers.ProfileSpec {
	return registers.ProfileSpec{
		Survey:       survey,
		FileInfo:     registers.FileInfo{IntervalSeconds: interval},
		Channels:     channels,
		From:         wire.Timestamp{CalendarDate: wire.CalendarDate{Day: 18, Month: 1, Year: 2026}, ClockTime: wire.ClockTime{Hour: 0, Minute: 30, Second: 0}},
		StartRecord:  100,
		RecordsCount: 2,
	}
}

func TestFormatProfileBasicScaling(t *testing.T) {
	spec := testSpec(uint16(registers.LS01), 1800, []registers.FileChannelInfo{
		{Type: uint8(wire.Float), ScalingFactor: 1.0, Name: "VOLTAGE"},
	})
	fields := []any{float32(230.0), float32(231.0)}

	records := FormatProfile(spec, fields)
	require.Len(t, records, 2)

	assert.Equal(t, int32(100), records[0].RecordNumber)
	assert.Equal(t, "2026-01-18 00:30:00", records[0].Timestamp)
	assert.InDelta(t, 230.0, records[0].Values["VOLTAGE"].(float64), 1e-9)

	assert.Equal(t, int32(101), records[1].RecordNumber)
	assert.Equal(t, "2026-01-18 01:00:00", records[1].Timestamp)
	assert.InDelta(t, 231.0, records[1].Values["VOLTAGE"].(float64), 1e-9)
}

func TestFormatProfileLS03ExtraFactor(t *testing.T) {
	spec := testSpec(uint16(registers.LS03), 1800, []registers.FileChannelInfo{
		{Type: uint8(wire.Float), ScalingFactor: 10.0, Name: "ENERGY"},
	})
	fields := []any{float32(100.0)}
	spec.RecordsCount = 1

	records := FormatProfile(spec, fields)
	require.Len(t, records, 1)
	assert.InDelta(t, 100.0*10.0*0.001344, records[0].Values["ENERGY"].(float64), 1e-9)
}

func TestFormatProfileStringPassthrough(t *testing.T) {
	spec := testSpec(uint16(registers.LS01), 1800, []registers.FileChannelInfo{
		{Type: uint8(wire.String), Name: "LABEL"},
	})
	spec.RecordsCount = 1
	fields := []any{"PHASE_A"}

	records := FormatProfile(spec, fields)
	require.Len(t, records, 1)
	assert.Equal(t, "PHASE_A", records[0].Values["LABEL"])
}

func TestFormatProfileNoChannelsReturnsNil(t *testing.T) {
	spec := testSpec(uint16(registers.LS01), 1800, nil)
	assert.Nil(t, FormatProfile(spec, nil))
}
