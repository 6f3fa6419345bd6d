package types

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Guid is a 128-bit globally unique identifier (spec §3). Its wire layout
// is NOT the RFC 4122 byte order: Data1 and Data2/Data3 are little-endian,
// and Data4 is copied verbatim.
type Guid struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// ByteLen is always 16.
func (Guid) ByteLen() int { return 16 }

// String renders the GUID in the canonical hyphenated form, e.g.
// "72962B91-FA75-4AE6-8D28-B404DC7DAF63".
func (g Guid) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		g.Data1, g.Data2, g.Data3,
		g.Data4[0], g.Data4[1], g.Data4[2], g.Data4[3],
		g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}

// ParseGuid parses either the hyphenated canonical form or a plain 32-hex-
// digit form into a Guid.
func ParseGuid(s string) (Guid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, fmt.Errorf("opcua: parse guid %q: %w", s, err)
	}
	b := [16]byte(u)
	return Guid{
		Data1: binary.BigEndian.Uint32(b[0:4]),
		Data2: binary.BigEndian.Uint16(b[4:6]),
		Data3: binary.BigEndian.Uint16(b[6:8]),
		Data4: [8]byte(b[8:16]),
	}, nil
}

// Encode writes Data1/Data2/Data3 little-endian followed by the 8 raw
// Data4 bytes, matching the original implementation's wire layout.
func (g Guid) Encode(w Writer) (int, error) {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], g.Data1)
	binary.LittleEndian.PutUint16(buf[4:6], g.Data2)
	binary.LittleEndian.PutUint16(buf[6:8], g.Data3)
	copy(buf[8:16], g.Data4[:])
	return writeBytes(w, buf[:])
}

// DecodeGuid reads a Guid from r.
func DecodeGuid(r Reader) (Guid, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Guid{}, wrapDecodeErr("guid", err)
	}
	var g Guid
	g.Data1 = binary.LittleEndian.Uint32(buf[0:4])
	g.Data2 = binary.LittleEndian.Uint16(buf[4:6])
	g.Data3 = binary.LittleEndian.Uint16(buf[6:8])
	copy(g.Data4[:], buf[8:16])
	return g, nil
}
