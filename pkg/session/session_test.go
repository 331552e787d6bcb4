package session

import (
	"context"
	"testing"
	"time"

	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/transport"
	"github.com/meterlink/edmidrv/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeter answers exactly one framed request with a canned response,
// stripping the wake-up preamble if present, so tests can drive the
// engine against a scripted peer instead of real hardware.
func fakeMeter(t *testing.T, meter *transport.VirtualTransport, respond func(req *frame.Frame) []byte) {
	t.Helper()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		raw, err := meter.ReadFramed(ctx)
		if err != nil {
			return
		}
		req, err := frame.Parse(raw)
		if err != nil {
			return
		}
		resp := respond(req)
		_ = meter.Write(ctx, resp)
	}()
}

func TestEngineLoginSuccess(t *testing.T) {
	host, meter := transport.NewVirtualPair()
	defer host.Close()
	defer meter.Close()

	fakeMeter(t, meter, func(req *frame.Frame) []byte {
		assert.Equal(t, proto.CmdLogin, req.Command)
		return frame.Build(251308613, proto.Command(proto.RespACK), nil)
	})

	e := NewEngine(host, 251308613, time.Second)
	err := e.Login(context.Background(), "EDMA", "IMDEIMDE")
	require.NoError(t, err)
	assert.True(t, e.LoggedIn())
}

func TestEngineLoginFailure(t *testing.T) {
	host, meter := transport.NewVirtualPair()
	defer host.Close()
	defer meter.Close()

	fakeMeter(t, meter, func(req *frame.Frame) []byte {
		return frame.Build(251308613, proto.Command(proto.RespCAN), nil)
	})

	e := NewEngine(host, 251308613, time.Second)
	err := e.Login(context.Background(), "EDMA", "IMDEIMDE")
	assert.ErrorIs(t, err, proto.LoginFailed)
	assert.False(t, e.LoggedIn())
}

func TestEngineReadRegisters(t *testing.T) {
	host, meter := transport.NewVirtualPair()
	defer host.Close()
	defer meter.Close()

	regs := []registers.Register{{Name: "V", Address: 0xE000, Type: wire.Float, ValueLen: 4}}

	fakeMeter(t, meter, func(req *frame.Frame) []byte {
		assert.Equal(t, proto.CmdReadRegisterExt, req.Command)
		buf := make([]byte, 4)
		_, _ = wire.Encode(wire.Float, float32(230.0), buf)
		body := append([]byte{0x00, 0x00, 0xFF, 0xF1, 0x00}, buf...)
		return frame.Build(1, proto.CmdReadRegisterExt, body)
	})

	e := NewEngine(host, 1, time.Second)
	results, err := e.ReadRegisters(context.Background(), regs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float32(230.0), results[0].Value)
}

func TestEngineRejectsMeterSerialMismatch(t *testing.T) {
	host, meter := transport.NewVirtualPair()
	defer host.Close()
	defer meter.Close()

	fakeMeter(t, meter, func(req *frame.Frame) []byte {
		return frame.Build(999, proto.Command(proto.RespACK), nil)
	})

	e := NewEngine(host, 1, time.Second)
	err := e.Login(context.Background(), "EDMA", "IMDEIMDE")
	assert.ErrorIs(t, err, proto.RequestResponseCmdMismatch)
}
