// Package session implements the protocol engine (C4): the wake-up
// sequence, login/logout, and the single-in-flight request/response
// discipline every other command rides on top of (§4.4). It is the only
// package that touches a [transport.Transport] directly.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/meterlink/edmidrv/pkg/command"
	"github.com/meterlink/edmidrv/pkg/frame"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/transport"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// DefaultTimeout is the per-round-trip timeout an Engine uses when
// NewEngine is given none. Every write+read round trip ends at the
// earlier of that timeout and the caller's own context deadline.
const DefaultTimeout = 2 * time.Second

// Engine is the session/protocol engine of §4.4. One Engine instance
// owns exactly one transport and serializes every request issued
// through it; callers on different channels use independent Engines.
type Engine struct {
	transport   transport.Transport
	meterSerial uint32
	timeout     time.Duration

	mu       sync.Mutex
	loggedIn bool
	wokenUp  bool
	logger   *log.Entry
}

// NewEngine binds an Engine to one transport and meter serial. Timeout,
// if zero, defaults to DefaultTimeout.
func NewEngine(t transport.Transport, meterSerial uint32, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		transport:   t,
		meterSerial: meterSerial,
		timeout:     timeout,
		logger:      log.WithField("meter", fmt.Sprintf("%08X", meterSerial)),
	}
}

// roundTrip serializes one request/response exchange: prepend the
// wake-up sequence only on the session's first write (§4.4), write the
// framed request, then block on a framed read and parse it.
func (e *Engine) roundTrip(ctx context.Context, cmd proto.Command, body []byte) (*frame.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deadline := time.Now().Add(e.timeout)
	rtCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	out := frame.Build(e.meterSerial, cmd, body)
	if !e.wokenUp {
		out = append([]byte(proto.WakeUp), out...)
		e.wokenUp = true
	}

	e.logger.Debugf("tx cmd=%q len=%d", cmd, len(out))
	if err := e.transport.Write(rtCtx, out); err != nil {
		return nil, err
	}

	raw, err := e.transport.ReadFramed(rtCtx)
	if err != nil {
		return nil, err
	}
	f, err := frame.Parse(raw)
	if err != nil {
		e.logger.Warnf("rx parse error: %v", err)
		return nil, err
	}
	if f.MeterSerial != e.meterSerial {
		e.logger.Warnf("rx meter serial mismatch: got %08X want %08X", f.MeterSerial, e.meterSerial)
		return nil, proto.RequestResponseCmdMismatch
	}
	e.logger.Debugf("rx cmd=%q len=%d", f.Command, len(f.Body))
	return f, nil
}

// Login authenticates the session (§4.3, §4.4).
func (e *Engine) Login(ctx context.Context, username, password string) error {
	f, err := e.roundTrip(ctx, proto.CmdLogin, command.BuildLogin(username, password))
	if err != nil {
		return err
	}
	if err := command.ParseLoginResponse(f); err != nil {
		return err
	}
	e.mu.Lock()
	e.loggedIn = true
	e.mu.Unlock()
	return nil
}

// Logout ends the session. The meter's LOGOUT response shape mirrors
// LOGIN's (§3): ACK at offset 12, empty body.
func (e *Engine) Logout(ctx context.Context) error {
	f, err := e.roundTrip(ctx, proto.CmdLogout, nil)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.loggedIn = false
	e.mu.Unlock()
	if byte(f.Command) != proto.RespACK {
		return proto.LogoutFailed
	}
	return nil
}

// LoggedIn reports whether Login has completed successfully without a
// following Logout.
func (e *Engine) LoggedIn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loggedIn
}

// GetMeterAttention issues the out-of-band wake-up command used to
// rouse a meter that has gone to sleep (§3).
func (e *Engine) GetMeterAttention(ctx context.Context) error {
	f, err := e.roundTrip(ctx, proto.CmdGetMeterAttention, nil)
	if err != nil {
		return err
	}
	if byte(f.Command) != proto.RespACK {
		return proto.GetMeterAttentionFailed
	}
	return nil
}

// ReadRegisters issues READ_REGISTER_EXT for the given registers and
// returns one [registers.Result] per register, in order (§4.3).
func (e *Engine) ReadRegisters(ctx context.Context, regs []registers.Register) ([]registers.Result, error) {
	f, err := e.roundTrip(ctx, proto.CmdReadRegisterExt, command.BuildReadRegisterExt(regs))
	if err != nil {
		return nil, err
	}
	return command.ParseReadRegisterExtResponse(f, regs)
}

// ReadRegister is a convenience wrapper for a single register read.
func (e *Engine) ReadRegister(ctx context.Context, reg registers.Register) (any, error) {
	results, err := e.ReadRegisters(ctx, []registers.Register{reg})
	if err != nil {
		return nil, err
	}
	return results[0].Value, results[0].Err
}

// FileInfo issues FILE_ACCESS/FILE_INFO for a survey's interval file
// (§4.3, §4.5 step 3).
func (e *Engine) FileInfo(ctx context.Context, survey uint16) (registers.FileInfo, error) {
	f, err := e.roundTrip(ctx, proto.CmdFileAccess, fileAccessBody(proto.FileExtInfo, command.BuildFileInfo(survey)))
	if err != nil {
		return registers.FileInfo{}, err
	}
	return command.ParseFileInfoResponse(f)
}

// FileSearch issues FILE_ACCESS/FILE_SEARCH (§4.3, §4.5 steps 5-6).
func (e *Engine) FileSearch(ctx context.Context, survey uint16, startRecord int32, ts wire.Timestamp, dir uint8) (command.SearchResult, error) {
	body := command.BuildFileSearch(survey, startRecord, ts, dir)
	f, err := e.roundTrip(ctx, proto.CmdFileAccess, fileAccessBody(proto.FileExtSearch, body))
	if err != nil {
		return command.SearchResult{}, err
	}
	return command.ParseFileSearchResponse(f)
}

// FileRead issues FILE_ACCESS/FILE_READ for one chunk of interval
// records (§4.3, §4.5 step 8).
func (e *Engine) FileRead(ctx context.Context, survey uint16, startRecord int32, recordsCount, recordOffset, recordSize int16, channelTypes []wire.Type) (command.ReadResult, []any, int, error) {
	body := command.BuildFileRead(survey, startRecord, recordsCount, recordOffset, recordSize)
	f, err := e.roundTrip(ctx, proto.CmdFileAccess, fileAccessBody(proto.FileExtRead, body))
	if err != nil {
		return command.ReadResult{}, nil, 0, err
	}
	return command.ParseFileReadResponse(f, channelTypes)
}

// fileAccessBody prepends the extension byte every FILE_ACCESS request
// carries ahead of its payload (§4.3).
func fileAccessBody(ext proto.FileExt, payload []byte) []byte {
	body := make([]byte, 0, 1+len(payload))
	body = append(body, byte(ext))
	body = append(body, payload...)
	return body
}
