package types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// -------------------------------------------------------------------------
// Codec Errors
// -------------------------------------------------------------------------

// Sentinel errors returned by the wire codec. They correspond to the
// BadDecodingError and BadEncodingLimitsExceeded status codes; no code in
// this module translates one into the other.
var (
	// ErrDecoding indicates malformed bytes: an invalid tag, a negative
	// length below -1, or a stream that ended before a value was complete.
	ErrDecoding = errors.New("opcua: decoding error")

	// ErrEncodingLimitsExceeded indicates a string, byte string, array or
	// message exceeded a configured EncodingLimits bound.
	ErrEncodingLimitsExceeded = errors.New("opcua: encoding limits exceeded")
)

// Writer is the sink every Encode method writes to. Any io.Writer works,
// e.g. a bytes.Buffer.
type Writer = io.Writer

// Reader is the source every Decode function reads from.
type Reader = io.Reader

// EncodingLimits bounds the decoder's willingness to allocate, per spec §6.
// The zero value is invalid; use DefaultEncodingLimits.
type EncodingLimits struct {
	MaxStringLength     int32
	MaxByteStringLength int32
	MaxArrayLength      int32
	MaxMessageLength    int32
}

// DefaultEncodingLimits returns the default caps from spec §6: 64KiB
// strings/byte-strings, 1000-element arrays, 16MiB messages.
func DefaultEncodingLimits() EncodingLimits {
	return EncodingLimits{
		MaxStringLength:     65535,
		MaxByteStringLength: 65535,
		MaxArrayLength:      1000,
		MaxMessageLength:    16 * 1024 * 1024,
	}
}

// -------------------------------------------------------------------------
// Scalar primitives — spec §3 "Primitive typed values"
// -------------------------------------------------------------------------

// WriteBoolean encodes a Boolean as a single byte (0 or 1).
func WriteBoolean(w Writer, v bool) (int, error) {
	b := byte(0)
	if v {
		b = 1
	}
	return writeBytes(w, []byte{b})
}

// ReadBoolean decodes a Boolean from a single byte. Any nonzero byte is true.
func ReadBoolean(r Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, wrapDecodeErr("boolean", err)
	}
	return buf[0] != 0, nil
}

// WriteSByte encodes a signed 8-bit integer.
func WriteSByte(w Writer, v int8) (int, error) { return writeBytes(w, []byte{byte(v)}) }

// ReadSByte decodes a signed 8-bit integer.
func ReadSByte(r Reader) (int8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapDecodeErr("sbyte", err)
	}
	return int8(buf[0]), nil
}

// WriteByte encodes an unsigned 8-bit integer.
func WriteByte(w Writer, v uint8) (int, error) { return writeBytes(w, []byte{v}) }

// ReadByte decodes an unsigned 8-bit integer.
func ReadByte(r Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapDecodeErr("byte", err)
	}
	return buf[0], nil
}

// WriteInt16 encodes a little-endian signed 16-bit integer.
func WriteInt16(w Writer, v int16) (int, error) { return WriteUint16(w, uint16(v)) }

// ReadInt16 decodes a little-endian signed 16-bit integer.
func ReadInt16(r Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

// WriteUint16 encodes a little-endian unsigned 16-bit integer.
func WriteUint16(w Writer, v uint16) (int, error) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return writeBytes(w, buf[:])
}

// ReadUint16 decodes a little-endian unsigned 16-bit integer.
func ReadUint16(r Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapDecodeErr("uint16", err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// WriteInt32 encodes a little-endian signed 32-bit integer.
func WriteInt32(w Writer, v int32) (int, error) { return WriteUint32(w, uint32(v)) }

// ReadInt32 decodes a little-endian signed 32-bit integer.
func ReadInt32(r Reader) (int32, error) {
	v, err := ReadUint32(r)
	return int32(v), err
}

// WriteUint32 encodes a little-endian unsigned 32-bit integer.
func WriteUint32(w Writer, v uint32) (int, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return writeBytes(w, buf[:])
}

// ReadUint32 decodes a little-endian unsigned 32-bit integer.
func ReadUint32(r Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapDecodeErr("uint32", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteInt64 encodes a little-endian signed 64-bit integer.
func WriteInt64(w Writer, v int64) (int, error) { return WriteUint64(w, uint64(v)) }

// ReadInt64 decodes a little-endian signed 64-bit integer.
func ReadInt64(r Reader) (int64, error) {
	v, err := ReadUint64(r)
	return int64(v), err
}

// WriteUint64 encodes a little-endian unsigned 64-bit integer.
func WriteUint64(w Writer, v uint64) (int, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return writeBytes(w, buf[:])
}

// ReadUint64 decodes a little-endian unsigned 64-bit integer.
func ReadUint64(r Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapDecodeErr("uint64", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteFloat encodes an IEEE-754 32-bit float.
func WriteFloat(w Writer, v float32) (int, error) {
	return WriteUint32(w, math.Float32bits(v))
}

// ReadFloat decodes an IEEE-754 32-bit float.
func ReadFloat(r Reader) (float32, error) {
	bits, err := ReadUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// WriteDouble encodes an IEEE-754 64-bit float.
func WriteDouble(w Writer, v float64) (int, error) {
	return WriteUint64(w, math.Float64bits(v))
}

// ReadDouble decodes an IEEE-754 64-bit float.
func ReadDouble(r Reader) (float64, error) {
	bits, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// -------------------------------------------------------------------------
// internal helpers
// -------------------------------------------------------------------------

func writeBytes(w Writer, b []byte) (int, error) {
	n, err := w.Write(b)
	if err != nil {
		return n, fmt.Errorf("opcua: write %d bytes: %w", len(b), err)
	}
	return n, nil
}

func wrapDecodeErr(what string, err error) error {
	return fmt.Errorf("opcua: decode %s: %w", what, errors.Join(err, ErrDecoding))
}
