package transport

import (
	"context"
	"net"
	"time"

	"github.com/meterlink/edmidrv/pkg/transporterr"
)

// VirtualTransport is an in-process duplex channel for tests, grounded
// on the teacher's TCP-pair test double: here a net.Pipe stands in for
// the wire, so no broker process or port is needed.
type VirtualTransport struct {
	conn net.Conn
}

// NewVirtualPair returns two ends of an in-process channel: whatever one
// side writes, the other reads, exactly like a loopback serial cable.
func NewVirtualPair() (host, meter *VirtualTransport) {
	a, b := net.Pipe()
	return &VirtualTransport{conn: a}, &VirtualTransport{conn: b}
}

func (t *VirtualTransport) Write(ctx context.Context, buf []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	n, err := t.conn.Write(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return transporterr.ErrTimeout
		}
		return err
	}
	if n != len(buf) {
		return transporterr.ErrShortWrite
	}
	return nil
}

func (t *VirtualTransport) ReadFramed(ctx context.Context) ([]byte, error) {
	return readFramedFromReader(func() (byte, error) {
		return t.readByte(ctx)
	})
}

func (t *VirtualTransport) ReadExact(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		b, err := t.readByte(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *VirtualTransport) readByte(ctx context.Context) (byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetReadDeadline(deadline)
	} else {
		_ = t.conn.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, 1)
	n, err := t.conn.Read(buf)
	if n == 1 {
		return buf[0], nil
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return 0, transporterr.ErrTimeout
	}
	if err != nil {
		return 0, transporterr.ErrClosed
	}
	return 0, transporterr.ErrTimeout
}

// FlushInput is a no-op for the virtual pair: a net.Pipe has no internal
// buffer to discard.
func (t *VirtualTransport) FlushInput() error {
	return nil
}

func (t *VirtualTransport) Close() error {
	return t.conn.Close()
}
