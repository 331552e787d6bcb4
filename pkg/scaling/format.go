// Package scaling formats a downloaded profile into scaled,
// human/JSON-friendly records: per-channel physical values and ISO
// timestamps derived from the survey's interval (§4 "Output formatter").
// It is pure and stateless — no register reads, no transport.
package scaling

import (
	"time"

	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// ls03ExtraFactor is an unexplained multiplier the source applies only
// to LS03 channel values on top of each channel's own scaling factor;
// carried through as-is (§9 open question).
const ls03ExtraFactor = 0.001344

// Record is one interval record, scaled and named by channel.
type Record struct {
	RecordNumber int32
	Timestamp    string
	Values       map[string]any
}

// FormatProfile turns a profile.Engine.Download result into a list of
// Records, one per record in spec, each keyed by channel name.
func FormatProfile(spec registers.ProfileSpec, fields []any) []Record {
	channelsCount := len(spec.Channels)
	if channelsCount == 0 {
		return nil
	}

	recordsCount := spec.RecordsCount
	if recordsCount <= 0 {
		recordsCount = int32(len(fields) / channelsCount)
	}

	records := make([]Record, 0, recordsCount)
	idx := 0
	for r := int32(0); r < recordsCount; r++ {
		rec := Record{
			RecordNumber: spec.StartRecord + r,
			Timestamp:    intervalTimestamp(spec.From, spec.FileInfo.IntervalSeconds, r),
			Values:       make(map[string]any, channelsCount),
		}
		for c := 0; c < channelsCount; c++ {
			if idx >= len(fields) {
				break
			}
			ch := spec.Channels[c]
			raw := fields[idx]
			idx++

			scale := float64(ch.ScalingFactor)
			if registers.Survey(spec.Survey) == registers.LS03 {
				scale *= ls03ExtraFactor
			}
			rec.Values[ch.Name] = scaleChannelValue(wire.Type(ch.Type), raw, scale)
		}
		records = append(records, rec)
	}
	return records
}

// scaleChannelValue applies a channel's scaling factor to a decoded
// field, per-type, mirroring the EDMI_TYPE dispatch of the formatter
// this package is grounded on. Text and already-structured types pass
// through unscaled; DOUBLE_ENERGY's micropulse count (already a plain
// uint64 out of the wire codec, never a reinterpreted float64) is
// scaled the same way FLOAT_ENERGY is.
func scaleChannelValue(t wire.Type, raw any, scale float64) any {
	switch t {
	case wire.Boolean, wire.Byte,
		wire.String, wire.StringLong, wire.EFAString, wire.ErrorString, wire.SerialNumber:
		return raw

	case wire.DateTime:
		if ts, ok := raw.(wire.Timestamp); ok {
			return toTime(ts).Format("2006-01-02 15:04:05")
		}
		return raw

	case wire.Date:
		if d, ok := raw.(wire.CalendarDate); ok {
			return time.Date(d.Year, time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		}
		return raw

	case wire.Time:
		if c, ok := raw.(wire.ClockTime); ok {
			return formatClock(c)
		}
		return raw

	case wire.FloatEnergy:
		if v, ok := raw.(uint32); ok {
			return float64(v) * float64(scale)
		}
	case wire.DoubleEnergy:
		if v, ok := raw.(uint64); ok {
			return float64(v) * float64(scale)
		}
	case wire.Float, wire.PowerFactor:
		if v, ok := raw.(float32); ok {
			return float64(v) * float64(scale)
		}
	case wire.Double:
		if v, ok := raw.(float64); ok {
			return v * float64(scale)
		}
	case wire.Short:
		if v, ok := raw.(int16); ok {
			return float64(v) * float64(scale)
		}
	case wire.HexShort:
		if v, ok := raw.(uint16); ok {
			return float64(v) * float64(scale)
		}
	case wire.Long:
		if v, ok := raw.(int32); ok {
			return float64(v) * float64(scale)
		}
	case wire.HexLong, wire.RegNum:
		if v, ok := raw.(uint32); ok {
			return float64(v) * float64(scale)
		}
	case wire.LongLong:
		if v, ok := raw.(int64); ok {
			return float64(v) * float64(scale)
		}
	}
	return raw
}

// intervalTimestamp computes from + k*interval as an ISO string (§4
// "ISO timestamps computed as from_dt + k × interval").
func intervalTimestamp(from wire.Timestamp, intervalSeconds uint32, k int32) string {
	base := toTime(from)
	if intervalSeconds > 0 {
		base = base.Add(time.Duration(int64(intervalSeconds)*int64(k)) * time.Second)
	}
	return base.Format("2006-01-02 15:04:05")
}

func toTime(ts wire.Timestamp) time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), int(ts.Day), int(ts.Hour), int(ts.Minute), int(ts.Second), 0, time.UTC)
}

func formatClock(c wire.ClockTime) string {
	return toTime(wire.Timestamp{ClockTime: c}).Format("15:04:05")
}
