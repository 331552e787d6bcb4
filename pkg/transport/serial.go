package transport

import (
	"context"
	"time"

	"github.com/meterlink/edmidrv/pkg/transporterr"
	"github.com/tarm/serial"
)

// SerialConfig describes how to open the physical port (§4.6). ReadPoll
// is the tarm/serial read timeout used between individual byte reads;
// a caller's ctx deadline is additionally enforced around the whole
// ReadFramed/ReadExact call.
type SerialConfig struct {
	Port     string
	Baud     int
	ReadPoll time.Duration
}

// SerialTransport is the real RS-232/RS-485 channel (§4.6), a thin
// wrapper over a tarm/serial port.
type SerialTransport struct {
	port *serial.Port
}

// OpenSerial opens the configured port with 8N1 framing, the layout
// every EDMI meter firmware expects.
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	readPoll := cfg.ReadPoll
	if readPoll <= 0 {
		readPoll = 100 * time.Millisecond
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		Parity:      serial.ParityNone,
		Size:        8,
		StopBits:    serial.Stop1,
		ReadTimeout: readPoll,
	})
	if err != nil {
		return nil, err
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Write(ctx context.Context, buf []byte) error {
	done := make(chan error, 1)
	go func() {
		n, err := t.port.Write(buf)
		if err == nil && n != len(buf) {
			err = transporterr.ErrShortWrite
		}
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return transporterr.ErrTimeout
	}
}

func (t *SerialTransport) ReadFramed(ctx context.Context) ([]byte, error) {
	return readFramedFromReader(func() (byte, error) {
		return t.readByteCtx(ctx)
	})
}

func (t *SerialTransport) ReadExact(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		b, err := t.readByteCtx(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// readByteCtx polls the port's own short read timeout in a loop,
// checking ctx between polls; tarm/serial has no context-aware read, so
// this is how the caller's overall deadline gets enforced on top of it.
func (t *SerialTransport) readByteCtx(ctx context.Context) (byte, error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return 0, transporterr.ErrTimeout
		default:
		}
		n, err := t.port.Read(buf)
		if n == 1 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (t *SerialTransport) FlushInput() error {
	return t.port.Flush()
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
