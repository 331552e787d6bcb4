package frame

import (
	"testing"

	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseRoundTrip(t *testing.T) {
	wire := Build(0x0EFAAA45, proto.CmdReadRegister, []byte{0xAA, 0xBB, 0xCC})
	f, err := Parse(wire)
	require.NoError(t, err)
	assert.EqualValues(t, 0x0EFAAA45, f.MeterSerial)
	assert.Equal(t, proto.ClientSerial, f.ClientSerial)
	assert.EqualValues(t, proto.CmdReadRegister, f.Command)
}

func TestStuffEscapesReservedBytes(t *testing.T) {
	// A body containing every reserved byte must come back unescaped
	// after a stuff/unstuff round trip, and no reserved byte may appear
	// unescaped in the wire form past offset 0 (§8 escape invariant).
	body := []byte{proto.STX, proto.ETX, proto.DLE, proto.XON, proto.XOFF, 0x41}
	wire := Build(1, proto.CmdInfo, body)

	for i := 1; i < len(wire)-1; i++ {
		if wire[i] == proto.DLE {
			i++ // escaped byte, skip the corrected value
			continue
		}
		assert.False(t, wire[i] == proto.STX || wire[i] == proto.ETX || wire[i] == proto.XON || wire[i] == proto.XOFF,
			"unescaped reserved byte at offset %d", i)
	}

	f, err := Parse(wire)
	require.NoError(t, err)
	assert.Equal(t, body, f.Body)
}

func TestParseLoginFixtureSuccess(t *testing.T) {
	// §8 scenario 1: LOGIN success, meter_serial=251308613.
	raw := Build(251308613, proto.Command(proto.RespACK), nil)
	f, err := Parse(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 251308613, f.MeterSerial)
	assert.EqualValues(t, proto.RespACK, byte(f.Command))
	assert.Empty(t, f.Body)
}

func TestParseLoginFixtureFailure(t *testing.T) {
	// §8 scenario 2: same request, CAN byte in place of ACK.
	raw := Build(251308613, proto.Command(proto.RespCAN), nil)
	f, err := Parse(raw)
	require.NoError(t, err)
	assert.EqualValues(t, proto.RespCAN, byte(f.Command))
}

func TestParseRejectsBadCRC(t *testing.T) {
	raw := Build(251308613, proto.Command(proto.RespACK), nil)
	raw[len(raw)-2] ^= 0xFF
	_, err := Parse(raw)
	assert.ErrorIs(t, err, proto.ResponseCRCError)
}

func TestParseRejectsTrailingDLE(t *testing.T) {
	raw := []byte{proto.STX, proto.DLE, proto.ETX}
	_, err := Parse(raw)
	assert.ErrorIs(t, err, proto.ResponseWrongLength)
}

func TestParseRequiresSTXAndETX(t *testing.T) {
	_, err := Parse([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}
