package types

import "time"

// epochOffset is the number of 100ns ticks between 1601-01-01 (the OPC UA /
// Windows FILETIME epoch) and 1970-01-01 (the Unix epoch).
const epochOffset = 116444736000000000

// DateTime is a UTC timestamp expressed as the number of 100-nanosecond
// intervals since 1601-01-01 (spec §3), stored as a signed 64-bit count.
type DateTime int64

// NewDateTime converts a time.Time to a DateTime.
func NewDateTime(t time.Time) DateTime {
	ticks := t.UTC().UnixNano()/100 + epochOffset
	return DateTime(ticks)
}

// Time converts a DateTime back to a time.Time in UTC.
func (d DateTime) Time() time.Time {
	unixNano := (int64(d) - epochOffset) * 100
	return time.Unix(0, unixNano).UTC()
}

// IsZero reports whether d is DateTime.MinValue (the OPC UA "null" timestamp).
func (d DateTime) IsZero() bool { return d == 0 }

// ByteLen returns the encoded size of a DateTime: always 8 bytes.
func (DateTime) ByteLen() int { return 8 }

// Encode writes the DateTime as a little-endian 64-bit tick count.
func (d DateTime) Encode(w Writer) (int, error) { return WriteInt64(w, int64(d)) }

// DecodeDateTime reads a DateTime from r.
func DecodeDateTime(r Reader) (DateTime, error) {
	v, err := ReadInt64(r)
	if err != nil {
		return 0, err
	}
	return DateTime(v), nil
}
