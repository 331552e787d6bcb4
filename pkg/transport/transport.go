// Package transport defines the byte-channel contract the session engine
// drives (§4.6) and the concrete channels that satisfy it: a real serial
// port (package tarm/serial) and an in-process virtual pair for tests.
package transport

import (
	"context"

	"github.com/meterlink/edmidrv/pkg/proto"
)

// Transport is the framed byte channel the protocol engine requires
// (§4.6). Every method call is a suspension point; each honors ctx's
// deadline and returns transporterr.ErrTimeout when it passes. Other
// channel failures are reported as transporterr.ErrClosed or as the
// underlying I/O error, depending on the implementation.
type Transport interface {
	// Write sends buf, returning transporterr.ErrTimeout if ctx expires
	// first and transporterr.ErrShortWrite if the channel accepted only
	// part of buf.
	Write(ctx context.Context, buf []byte) error

	// ReadFramed reads until an STX byte is seen outside a frame, then
	// continues until an ETX not immediately preceded by DLE is seen,
	// and returns the inclusive STX...ETX window.
	ReadFramed(ctx context.Context) ([]byte, error)

	// ReadExact reads exactly n bytes. Retained for the length-prefixed
	// TLV variant some meter firmwares speak; the EDMI dialect itself
	// never calls it.
	ReadExact(ctx context.Context, n int) ([]byte, error)

	// FlushInput discards any buffered unread bytes, used before a
	// fresh wake-up sequence to recover from a desynchronized peer.
	FlushInput() error

	Close() error
}

// readFramedFromReader implements the STX/ETX boundary scan of §4.6
// against any byte source, used by both the serial and virtual
// transports. It reads one byte at a time; real UARTs and the virtual
// net.Pipe both tolerate this for frame sizes in the hundreds of bytes.
func readFramedFromReader(readByte func() (byte, error)) ([]byte, error) {
	var buf []byte
	inFrame := false
	for {
		b, err := readByte()
		if err != nil {
			return nil, err
		}
		if !inFrame {
			if b != proto.STX {
				continue
			}
			inFrame = true
			buf = append(buf[:0], b)
			continue
		}
		buf = append(buf, b)
		if b == proto.ETX && buf[len(buf)-2] != proto.DLE {
			return buf, nil
		}
	}
}
