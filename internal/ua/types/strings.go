package types

import (
	"fmt"
	"io"
)

// nullLength is the 32-bit length prefix that marks a string, byte string
// or array as null (distinct from empty, which uses length 0).
const nullLength = -1

// -------------------------------------------------------------------------
// UAString — spec §3 "Nullable string (UAString)"
// -------------------------------------------------------------------------

// UAString is a nullable, length-prefixed UTF-8 string. A nil Value means
// null; a non-nil empty string means present-but-empty.
type UAString struct {
	Value *string
}

// NullString returns a null UAString.
func NullString() UAString { return UAString{} }

// NewString returns a present UAString wrapping s (s may be empty).
func NewString(s string) UAString {
	return UAString{Value: &s}
}

// IsNull reports whether the string is null.
func (s UAString) IsNull() bool { return s.Value == nil }

// String returns the Go string value, or "" if null.
func (s UAString) String() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

// ByteLen returns 4 + len(Value) bytes, or 4 bytes if null.
func (s UAString) ByteLen() int {
	if s.Value == nil {
		return 4
	}
	return 4 + len(*s.Value)
}

// Encode writes the 4-byte length prefix followed by the UTF-8 bytes.
// A null string encodes as [0xFF,0xFF,0xFF,0xFF]; an empty string as
// [0x00,0x00,0x00,0x00].
func (s UAString) Encode(w Writer) (int, error) {
	if s.Value == nil {
		return WriteInt32(w, nullLength)
	}
	n, err := WriteInt32(w, int32(len(*s.Value)))
	if err != nil {
		return n, err
	}
	m, err := writeBytes(w, []byte(*s.Value))
	return n + m, err
}

// DecodeString reads a UAString, enforcing limits.MaxStringLength.
func DecodeString(r Reader, limits EncodingLimits) (UAString, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return UAString{}, err
	}
	if n < nullLength {
		return UAString{}, fmt.Errorf("opcua: string length %d: %w", n, ErrDecoding)
	}
	if n == nullLength {
		return NullString(), nil
	}
	if n > limits.MaxStringLength {
		return UAString{}, fmt.Errorf("opcua: string length %d exceeds limit %d: %w",
			n, limits.MaxStringLength, ErrEncodingLimitsExceeded)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return UAString{}, wrapDecodeErr("string body", err)
	}
	return NewString(string(buf)), nil
}

// -------------------------------------------------------------------------
// ByteString — spec §3 "Byte string"
// -------------------------------------------------------------------------

// ByteString is a nullable sequence of opaque octets, framed identically to
// UAString but carrying raw bytes rather than UTF-8 text.
type ByteString struct {
	Value []byte
}

// NullByteString returns a null ByteString.
func NullByteString() ByteString { return ByteString{Value: nil} }

// NewByteString returns a present ByteString. An empty non-nil slice encodes
// as present-and-empty; pass nil for null.
func NewByteString(b []byte) ByteString {
	if b == nil {
		b = []byte{}
	}
	return ByteString{Value: b}
}

// IsNull reports whether the byte string is null.
func (b ByteString) IsNull() bool { return b.Value == nil }

// ByteLen returns 4 + len(Value), or 4 if null.
func (b ByteString) ByteLen() int {
	if b.Value == nil {
		return 4
	}
	return 4 + len(b.Value)
}

// Encode writes the 4-byte length prefix followed by the raw octets.
func (b ByteString) Encode(w Writer) (int, error) {
	if b.Value == nil {
		return WriteInt32(w, nullLength)
	}
	n, err := WriteInt32(w, int32(len(b.Value)))
	if err != nil {
		return n, err
	}
	m, err := writeBytes(w, b.Value)
	return n + m, err
}

// DecodeByteString reads a ByteString, enforcing limits.MaxByteStringLength.
func DecodeByteString(r Reader, limits EncodingLimits) (ByteString, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return ByteString{}, err
	}
	if n < nullLength {
		return ByteString{}, fmt.Errorf("opcua: byte string length %d: %w", n, ErrDecoding)
	}
	if n == nullLength {
		return NullByteString(), nil
	}
	if n > limits.MaxByteStringLength {
		return ByteString{}, fmt.Errorf("opcua: byte string length %d exceeds limit %d: %w",
			n, limits.MaxByteStringLength, ErrEncodingLimitsExceeded)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return ByteString{}, wrapDecodeErr("byte string body", err)
	}
	return NewByteString(buf), nil
}

// -------------------------------------------------------------------------
// Array length framing — spec §4.1 "Arrays"
// -------------------------------------------------------------------------

// WriteArrayLength writes n's 4-byte length prefix. Pass -1 for "not
// present" (no elements follow).
func WriteArrayLength(w Writer, n int) (int, error) { return WriteInt32(w, int32(n)) }

// DecodeArrayLength reads an array length prefix, validating it against
// limits.MaxArrayLength. A result of -1 means the array is not present.
func DecodeArrayLength(r Reader, limits EncodingLimits) (int32, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if n < nullLength {
		return 0, fmt.Errorf("opcua: array length %d: %w", n, ErrDecoding)
	}
	if n > limits.MaxArrayLength {
		return 0, fmt.Errorf("opcua: array length %d exceeds limit %d: %w",
			n, limits.MaxArrayLength, ErrEncodingLimitsExceeded)
	}
	return n, nil
}
