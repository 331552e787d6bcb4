package registers

// Survey identifies a load-survey channel group: a distinct interval-record
// time series the meter maintains, addressed via ScopedAddress (§3).
type Survey uint16

// Named surveys the protocol itself assigns fixed codes to (§4.5, §8).
const (
	LS01 Survey = 0x0305
	LS02 Survey = 0x0325
	LS03 Survey = 0x0345
	LS04 Survey = 0x0365
	LS05 Survey = 0x0385
	LS06 Survey = 0x0395
	LS07 Survey = 0x03A5
	LS08 Survey = 0x03B5
	LS09 Survey = 0x03C5
	LS10 Survey = 0x03D5
)

// MaxChannelsCount bounds how many channels a single survey file may
// declare (§3).
const MaxChannelsCount = 16

// IntervalSecondsAddress and ChannelsCountAddress are the two scoped
// registers the profile engine reads before FILE_INFO (§4.5 step 2).
func IntervalSecondsAddress(survey uint16) uint32 { return ScopedAddress(survey, 0xF014) }
func ChannelsCountAddress(survey uint16) uint32   { return ScopedAddress(survey, 0xF012) }
