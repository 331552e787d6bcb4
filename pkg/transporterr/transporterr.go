// Package transporterr holds the sentinel errors a C6 transport
// implementation reports. These are distinct from the protocol-level
// [proto.Code] taxonomy: a transport error means the byte channel itself
// failed, not that the meter answered with a protocol-level refusal.
package transporterr

import "errors"

var (
	ErrTimeout    = errors.New("edmi: transport timed out")
	ErrClosed     = errors.New("edmi: transport is closed")
	ErrShortWrite = errors.New("edmi: short write to transport")
)
