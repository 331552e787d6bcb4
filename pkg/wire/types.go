package wire

// Type is the one-byte type code that selects a register's wire layout
// (§3). All multi-byte integers and floats are big-endian on the wire.
type Type byte

const (
	Byte          Type = 'C' // BYTE, u8
	Boolean       Type = 'B' // BOOLEAN, u8
	Short         Type = 'I' // SHORT, i16
	HexShort      Type = 'H' // HEX_SHORT, u16
	Long          Type = 'L' // LONG, i32
	HexLong       Type = 'X' // HEX_LONG, u32
	RegNum        Type = 'Z' // REG_NUM, u32
	LongLong      Type = 'V' // LONG_LONG, i64
	Float         Type = 'F' // FLOAT, f32
	PowerFactor   Type = 'P' // POWER_FACTOR, f32
	Double        Type = 'D' // DOUBLE, f64
	FloatEnergy   Type = 'O' // FLOAT_ENERGY, u32 micropulses
	DoubleEnergy  Type = 'U' // DOUBLE_ENERGY, u64 micropulses
	Date          Type = 'R' // DATE, day/month/year
	Time          Type = 'Q' // TIME, hour/minute/second
	DateTime      Type = 'T' // DATE_TIME, day/month/year/hour/minute/second
	String        Type = 'A' // STRING, NUL-terminated ASCII <=25
	StringLong    Type = 'G' // STRING_LONG, NUL-terminated ASCII <=25
	EFAString     Type = 'E' // EFA_STRING, NUL-terminated ASCII <=25
	ErrorString   Type = 'K' // ERROR_STRING, fixed 16 ASCII
	SerialNumber  Type = 'M' // SERIAL_NUMBER, 10 bytes on wire, 9 ASCII value
)

// MaxStringLen is the ceiling enforced on STRING/STRING_LONG/EFA_STRING
// buffers (§3).
const MaxStringLen = 25

// CalendarDate is the decoded value of a DATE register: day, month, and
// a four-digit year reconstructed from the wire's two-digit year (§3:
// "year is 00-99, interpret as 2000+year").
type CalendarDate struct {
	Day   uint8
	Month uint8
	Year  int // 2000-2099
}

// ClockTime is the decoded value of a TIME register.
type ClockTime struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// Timestamp is the decoded value of a DATE_TIME register.
type Timestamp struct {
	CalendarDate
	ClockTime
}
