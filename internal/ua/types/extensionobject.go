package types

import "fmt"

// ExtensionObjectEncoding identifies how an ExtensionObject's body is
// serialized (spec §3). This stack only ever carries opaque byte-string
// bodies; structures are not compiled to per-type codecs.
type ExtensionObjectEncoding byte

const (
	ExtensionObjectNoBody     ExtensionObjectEncoding = 0x00
	ExtensionObjectByteString ExtensionObjectEncoding = 0x01
	ExtensionObjectXML        ExtensionObjectEncoding = 0x02
)

// ExtensionObject wraps an unrecognized or application-defined structure
// as a type id plus an opaque body (spec §3).
type ExtensionObject struct {
	TypeID   NodeId
	Encoding ExtensionObjectEncoding
	Body     []byte
}

// NewExtensionObject wraps a pre-encoded body under typeID.
func NewExtensionObject(typeID NodeId, body []byte) *ExtensionObject {
	return &ExtensionObject{TypeID: typeID, Encoding: ExtensionObjectByteString, Body: body}
}

// Encode writes the type id, the encoding byte, and (if present) the body
// framed as a ByteString.
func (e *ExtensionObject) Encode(w Writer) (int, error) {
	total, err := e.TypeID.Encode(w)
	if err != nil {
		return total, err
	}
	c, err := WriteByte(w, byte(e.Encoding))
	total += c
	if err != nil {
		return total, err
	}
	switch e.Encoding {
	case ExtensionObjectNoBody:
		return total, nil
	case ExtensionObjectByteString, ExtensionObjectXML:
		c, err := NewByteString(e.Body).Encode(w)
		total += c
		return total, err
	default:
		return total, fmt.Errorf("opcua: encode extension object: unknown encoding 0x%02x: %w", e.Encoding, ErrDecoding)
	}
}

// DecodeExtensionObject reads an ExtensionObject from r.
func DecodeExtensionObject(r Reader, limits EncodingLimits) (*ExtensionObject, error) {
	typeID, err := DecodeNodeId(r, limits)
	if err != nil {
		return nil, err
	}
	encByte, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	enc := ExtensionObjectEncoding(encByte)
	eo := &ExtensionObject{TypeID: typeID, Encoding: enc}
	switch enc {
	case ExtensionObjectNoBody:
		return eo, nil
	case ExtensionObjectByteString, ExtensionObjectXML:
		body, err := DecodeByteString(r, limits)
		if err != nil {
			return nil, err
		}
		eo.Body = body.Value
		return eo, nil
	default:
		return nil, fmt.Errorf("opcua: decode extension object: unknown encoding 0x%02x: %w", encByte, ErrDecoding)
	}
}
