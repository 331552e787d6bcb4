package wire

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/meterlink/edmidrv/pkg/proto"
)

// FixedWidth returns the wire width of t for types with a constant
// width, or 0 for variable-width (string) types.
func FixedWidth(t Type) int {
	switch t {
	case Byte, Boolean:
		return 1
	case Short, HexShort:
		return 2
	case Long, HexLong, RegNum, FloatEnergy:
		return 4
	case LongLong, Double, DoubleEnergy:
		return 8
	case Float, PowerFactor:
		return 4
	case Date, Time:
		return 3
	case DateTime:
		return 6
	case ErrorString:
		return 16
	case SerialNumber:
		return 10
	default:
		return 0
	}
}

// Decode reads one value of type t out of buf starting at offset,
// honoring the declared valueLen (fixed width for numeric/date types,
// buffer ceiling for strings), and returns the decoded value along with
// the number of bytes consumed (§4.2).
func Decode(t Type, buf []byte, offset int, valueLen int) (value any, consumed int, err error) {
	window := buf[offset:]

	switch t {
	case Byte:
		if len(window) < 1 {
			return nil, 0, proto.RequestWrongLength
		}
		return window[0], 1, nil

	case Boolean:
		if len(window) < 1 {
			return nil, 0, proto.RequestWrongLength
		}
		return window[0] != 0, 1, nil

	case Short:
		if len(window) < 2 {
			return nil, 0, proto.RequestWrongLength
		}
		return int16(binary.BigEndian.Uint16(window)), 2, nil

	case HexShort:
		if len(window) < 2 {
			return nil, 0, proto.RequestWrongLength
		}
		return binary.BigEndian.Uint16(window), 2, nil

	case Long:
		if len(window) < 4 {
			return nil, 0, proto.RequestWrongLength
		}
		return int32(binary.BigEndian.Uint32(window)), 4, nil

	case HexLong, RegNum:
		if len(window) < 4 {
			return nil, 0, proto.RequestWrongLength
		}
		return binary.BigEndian.Uint32(window), 4, nil

	case LongLong:
		if len(window) < 8 {
			return nil, 0, proto.RequestWrongLength
		}
		return int64(binary.BigEndian.Uint64(window)), 8, nil

	case Float, PowerFactor:
		if len(window) < 4 {
			return nil, 0, proto.RequestWrongLength
		}
		return math.Float32frombits(binary.BigEndian.Uint32(window)), 4, nil

	case Double:
		if len(window) < 8 {
			return nil, 0, proto.RequestWrongLength
		}
		return math.Float64frombits(binary.BigEndian.Uint64(window)), 8, nil

	case FloatEnergy:
		if len(window) < 4 {
			return nil, 0, proto.RequestWrongLength
		}
		return binary.BigEndian.Uint32(window), 4, nil

	case DoubleEnergy:
		if len(window) < 8 {
			return nil, 0, proto.RequestWrongLength
		}
		return binary.BigEndian.Uint64(window), 8, nil

	case Date:
		if len(window) < 3 {
			return nil, 0, proto.RequestWrongLength
		}
		return CalendarDate{Day: window[0], Month: window[1], Year: 2000 + int(window[2])}, 3, nil

	case Time:
		if len(window) < 3 {
			return nil, 0, proto.RequestWrongLength
		}
		return ClockTime{Hour: window[0], Minute: window[1], Second: window[2]}, 3, nil

	case DateTime:
		if len(window) < 6 {
			return nil, 0, proto.RequestWrongLength
		}
		return Timestamp{
			CalendarDate: CalendarDate{Day: window[0], Month: window[1], Year: 2000 + int(window[2])},
			ClockTime:    ClockTime{Hour: window[3], Minute: window[4], Second: window[5]},
		}, 6, nil

	case String, StringLong, EFAString:
		return decodeString(window, valueLen)

	case ErrorString:
		if len(window) < 16 {
			return nil, 0, proto.RequestWrongLength
		}
		return string(window[:16]), 16, nil

	case SerialNumber:
		if len(window) < 10 {
			return nil, 0, proto.RequestWrongLength
		}
		return string(window[:9]), 10, nil

	default:
		return nil, 0, proto.UnimplementedDataType
	}
}

// decodeString implements §4.2's NUL-scan rule: scan up to valueLen
// bytes for a NUL terminator; if none is found and the full window was
// available, the whole window is the value; if fewer than valueLen
// bytes are available and no NUL is seen, it fails with
// REQUEST_WRONG_LENGTH.
func decodeString(window []byte, valueLen int) (value any, consumed int, err error) {
	if valueLen <= 0 || valueLen > MaxStringLen {
		valueLen = MaxStringLen
	}
	scanLen := valueLen
	if len(window) < scanLen {
		scanLen = len(window)
	}
	if idx := bytes.IndexByte(window[:scanLen], 0); idx >= 0 {
		return string(window[:idx]), idx + 1, nil
	}
	if scanLen == valueLen {
		return string(window[:scanLen]), scanLen, nil
	}
	return nil, 0, proto.RequestWrongLength
}

// Encode writes value (which must be the Go type Decode would have
// produced for t) into out, which must be at least FixedWidth(t) bytes
// for fixed-width types, or large enough to hold the string plus its
// NUL terminator for string types. It returns the number of bytes
// written.
func Encode(t Type, value any, out []byte) (n int, err error) {
	switch t {
	case Byte:
		out[0] = value.(uint8)
		return 1, nil

	case Boolean:
		if value.(bool) {
			out[0] = 1
		} else {
			out[0] = 0
		}
		return 1, nil

	case Short:
		binary.BigEndian.PutUint16(out, uint16(value.(int16)))
		return 2, nil

	case HexShort:
		binary.BigEndian.PutUint16(out, value.(uint16))
		return 2, nil

	case Long:
		binary.BigEndian.PutUint32(out, uint32(value.(int32)))
		return 4, nil

	case HexLong, RegNum:
		binary.BigEndian.PutUint32(out, value.(uint32))
		return 4, nil

	case LongLong:
		binary.BigEndian.PutUint64(out, uint64(value.(int64)))
		return 8, nil

	case Float, PowerFactor:
		binary.BigEndian.PutUint32(out, math.Float32bits(value.(float32)))
		return 4, nil

	case Double:
		binary.BigEndian.PutUint64(out, math.Float64bits(value.(float64)))
		return 8, nil

	case FloatEnergy:
		binary.BigEndian.PutUint32(out, value.(uint32))
		return 4, nil

	case DoubleEnergy:
		binary.BigEndian.PutUint64(out, value.(uint64))
		return 8, nil

	case Date:
		d := value.(CalendarDate)
		out[0], out[1], out[2] = d.Day, d.Month, byte(d.Year-2000)
		return 3, nil

	case Time:
		tm := value.(ClockTime)
		out[0], out[1], out[2] = tm.Hour, tm.Minute, tm.Second
		return 3, nil

	case DateTime:
		ts := value.(Timestamp)
		out[0], out[1], out[2] = ts.Day, ts.Month, byte(ts.Year-2000)
		out[3], out[4], out[5] = ts.Hour, ts.Minute, ts.Second
		return 6, nil

	case String, StringLong, EFAString:
		s := value.(string)
		if len(s) > MaxStringLen-1 {
			s = s[:MaxStringLen-1]
		}
		n := copy(out, s)
		out[n] = 0
		return n + 1, nil

	case ErrorString:
		s := value.(string)
		clear(out[:16])
		copy(out[:16], s)
		return 16, nil

	case SerialNumber:
		s := value.(string)
		if len(s) > 9 {
			s = s[:9]
		}
		clear(out[:10])
		copy(out[:9], s)
		return 10, nil

	default:
		return 0, proto.UnimplementedDataType
	}
}
