package types

import "fmt"

// IdType distinguishes the four kinds of NodeId identifier (spec §3).
type IdType uint8

const (
	IdTypeNumeric IdType = iota
	IdTypeString
	IdTypeGuid
	IdTypeByteString
)

func (t IdType) String() string {
	switch t {
	case IdTypeNumeric:
		return "Numeric"
	case IdTypeString:
		return "String"
	case IdTypeGuid:
		return "Guid"
	case IdTypeByteString:
		return "ByteString"
	default:
		return fmt.Sprintf("IdType(%d)", uint8(t))
	}
}

// Encoding byte values for the compact NodeId binary form (spec §3).
const (
	nodeIDEncodingTwoByte    byte = 0x00
	nodeIDEncodingFourByte   byte = 0x01
	nodeIDEncodingNumeric    byte = 0x02
	nodeIDEncodingString     byte = 0x03
	nodeIDEncodingGUID       byte = 0x04
	nodeIDEncodingByteString byte = 0x05

	// namespaceURIFlag and serverIndexFlag mark the optional ExpandedNodeId
	// fields present on top of the base encoding byte.
	namespaceURIFlag byte = 0x80
	serverIndexFlag  byte = 0x40
	nodeIDEncodingMask = 0x3F
)

// NodeId identifies a node in the address space. The zero value is the
// null NodeId: numeric identifier 0 in namespace 0.
type NodeId struct {
	Namespace  uint16
	IdType     IdType
	Numeric    uint32
	StringID   string
	GuidID     Guid
	ByteString []byte
}

// NewNumericNodeId builds a numeric NodeId.
func NewNumericNodeId(ns uint16, id uint32) NodeId {
	return NodeId{Namespace: ns, IdType: IdTypeNumeric, Numeric: id}
}

// NewStringNodeId builds a string NodeId.
func NewStringNodeId(ns uint16, id string) NodeId {
	return NodeId{Namespace: ns, IdType: IdTypeString, StringID: id}
}

// NewGuidNodeId builds a GUID NodeId.
func NewGuidNodeId(ns uint16, id Guid) NodeId {
	return NodeId{Namespace: ns, IdType: IdTypeGuid, GuidID: id}
}

// NewByteStringNodeId builds an opaque-identifier NodeId.
func NewByteStringNodeId(ns uint16, id []byte) NodeId {
	return NodeId{Namespace: ns, IdType: IdTypeByteString, ByteString: id}
}

// IsNull reports whether n is the null NodeId (ns=0, numeric id=0).
func (n NodeId) IsNull() bool {
	return n.IdType == IdTypeNumeric && n.Namespace == 0 && n.Numeric == 0
}

// Equal reports whether n and other identify the same node.
func (n NodeId) Equal(other NodeId) bool {
	if n.Namespace != other.Namespace || n.IdType != other.IdType {
		return false
	}
	switch n.IdType {
	case IdTypeNumeric:
		return n.Numeric == other.Numeric
	case IdTypeString:
		return n.StringID == other.StringID
	case IdTypeGuid:
		return n.GuidID == other.GuidID
	case IdTypeByteString:
		if len(n.ByteString) != len(other.ByteString) {
			return false
		}
		for i := range n.ByteString {
			if n.ByteString[i] != other.ByteString[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a NodeId in the usual "ns=1;i=1234" / "ns=2;s=foo" form.
func (n NodeId) String() string {
	prefix := ""
	if n.Namespace != 0 {
		prefix = fmt.Sprintf("ns=%d;", n.Namespace)
	}
	switch n.IdType {
	case IdTypeNumeric:
		return fmt.Sprintf("%si=%d", prefix, n.Numeric)
	case IdTypeString:
		return fmt.Sprintf("%ss=%s", prefix, n.StringID)
	case IdTypeGuid:
		return fmt.Sprintf("%sg=%s", prefix, n.GuidID.String())
	case IdTypeByteString:
		return fmt.Sprintf("%sb=%x", prefix, n.ByteString)
	default:
		return prefix + "invalid"
	}
}

// ByteLen returns the encoded size of n, choosing the smallest applicable
// compact form for numeric identifiers in the same way Encode does.
func (n NodeId) ByteLen() int {
	switch n.IdType {
	case IdTypeNumeric:
		if n.Namespace == 0 && n.Numeric <= 255 {
			return 2
		}
		if n.Namespace <= 255 && n.Numeric <= 65535 {
			return 4
		}
		return 7
	case IdTypeString:
		return 3 + 4 + len(n.StringID)
	case IdTypeGuid:
		return 3 + 16
	case IdTypeByteString:
		return 3 + 4 + len(n.ByteString)
	default:
		return 3
	}
}

// Encode writes n using the smallest compact form that represents it:
// TwoByte (ns=0, id<=255), FourByte (ns<=255, id<=65535), or the full
// Numeric/String/Guid/ByteString form otherwise.
func (n NodeId) Encode(w Writer) (int, error) {
	switch n.IdType {
	case IdTypeNumeric:
		if n.Namespace == 0 && n.Numeric <= 255 {
			total := 0
			c, err := WriteByte(w, nodeIDEncodingTwoByte)
			total += c
			if err != nil {
				return total, err
			}
			c, err = WriteByte(w, byte(n.Numeric))
			total += c
			return total, err
		}
		if n.Namespace <= 255 && n.Numeric <= 65535 {
			total := 0
			c, err := WriteByte(w, nodeIDEncodingFourByte)
			total += c
			if err != nil {
				return total, err
			}
			c, err = WriteByte(w, byte(n.Namespace))
			total += c
			if err != nil {
				return total, err
			}
			c, err = WriteUint16(w, uint16(n.Numeric))
			total += c
			return total, err
		}
		total := 0
		c, err := WriteByte(w, nodeIDEncodingNumeric)
		total += c
		if err != nil {
			return total, err
		}
		c, err = WriteUint16(w, n.Namespace)
		total += c
		if err != nil {
			return total, err
		}
		c, err = WriteUint32(w, n.Numeric)
		total += c
		return total, err

	case IdTypeString:
		total := 0
		c, err := WriteByte(w, nodeIDEncodingString)
		total += c
		if err != nil {
			return total, err
		}
		c, err = WriteUint16(w, n.Namespace)
		total += c
		if err != nil {
			return total, err
		}
		c, err = NewString(n.StringID).Encode(w)
		total += c
		return total, err

	case IdTypeGuid:
		total := 0
		c, err := WriteByte(w, nodeIDEncodingGUID)
		total += c
		if err != nil {
			return total, err
		}
		c, err = WriteUint16(w, n.Namespace)
		total += c
		if err != nil {
			return total, err
		}
		c, err = n.GuidID.Encode(w)
		total += c
		return total, err

	case IdTypeByteString:
		total := 0
		c, err := WriteByte(w, nodeIDEncodingByteString)
		total += c
		if err != nil {
			return total, err
		}
		c, err = WriteUint16(w, n.Namespace)
		total += c
		if err != nil {
			return total, err
		}
		c, err = NewByteString(n.ByteString).Encode(w)
		total += c
		return total, err

	default:
		return 0, fmt.Errorf("opcua: encode node id: unknown id type %v: %w", n.IdType, ErrDecoding)
	}
}

// DecodeNodeId reads a NodeId from r.
func DecodeNodeId(r Reader, limits EncodingLimits) (NodeId, error) {
	encoding, err := ReadByte(r)
	if err != nil {
		return NodeId{}, err
	}
	switch encoding & nodeIDEncodingMask {
	case nodeIDEncodingTwoByte:
		id, err := ReadByte(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(0, uint32(id)), nil

	case nodeIDEncodingFourByte:
		ns, err := ReadByte(r)
		if err != nil {
			return NodeId{}, err
		}
		id, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(uint16(ns), uint32(id)), nil

	case nodeIDEncodingNumeric:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		id, err := ReadUint32(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(ns, id), nil

	case nodeIDEncodingString:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		s, err := DecodeString(r, limits)
		if err != nil {
			return NodeId{}, err
		}
		return NewStringNodeId(ns, s.String()), nil

	case nodeIDEncodingGUID:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		g, err := DecodeGuid(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewGuidNodeId(ns, g), nil

	case nodeIDEncodingByteString:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		b, err := DecodeByteString(r, limits)
		if err != nil {
			return NodeId{}, err
		}
		return NewByteStringNodeId(ns, b.Value), nil

	default:
		return NodeId{}, fmt.Errorf("opcua: decode node id: unknown encoding byte 0x%02x: %w", encoding, ErrDecoding)
	}
}

// ExpandedNodeId is a NodeId plus an optional namespace URI and an
// optional index of the server that owns the node (spec §3).
type ExpandedNodeId struct {
	NodeId         NodeId
	NamespaceURI   UAString
	ServerIndex    uint32
	HasServerIndex bool
}

// NewExpandedNodeId wraps a plain NodeId with no namespace URI or server
// index set.
func NewExpandedNodeId(id NodeId) ExpandedNodeId {
	return ExpandedNodeId{NodeId: id}
}

// IsNull reports whether the wrapped NodeId is null.
func (e ExpandedNodeId) IsNull() bool { return e.NodeId.IsNull() }

// Encode writes e, setting the namespace-URI and server-index flag bits
// on the base NodeId encoding byte when those fields are present.
func (e ExpandedNodeId) Encode(w Writer) (int, error) {
	flags := byte(0)
	if !e.NamespaceURI.IsNull() {
		flags |= namespaceURIFlag
	}
	if e.HasServerIndex {
		flags |= serverIndexFlag
	}
	if flags == 0 {
		return e.NodeId.Encode(w)
	}

	var buf countingBuffer
	if _, err := e.NodeId.Encode(&buf); err != nil {
		return 0, err
	}
	body := buf.bytes
	body[0] |= flags

	total, err := writeBytes(w, body)
	if err != nil {
		return total, err
	}
	if !e.NamespaceURI.IsNull() {
		c, err := e.NamespaceURI.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if e.HasServerIndex {
		c, err := WriteUint32(w, e.ServerIndex)
		total += c
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeExpandedNodeId reads an ExpandedNodeId from r.
func DecodeExpandedNodeId(r Reader, limits EncodingLimits) (ExpandedNodeId, error) {
	// The flag bits live in the same byte as the NodeId's encoding kind, so
	// decode that byte once via a small wrapper reader.
	br := &flagAwareReader{r: r}
	flags, encoding, err := br.readFlagsAndEncoding()
	if err != nil {
		return ExpandedNodeId{}, err
	}

	id, err := decodeNodeIdBody(br, encoding, limits)
	if err != nil {
		return ExpandedNodeId{}, err
	}

	result := ExpandedNodeId{NodeId: id}
	if flags&namespaceURIFlag != 0 {
		uri, err := DecodeString(r, limits)
		if err != nil {
			return ExpandedNodeId{}, err
		}
		result.NamespaceURI = uri
	}
	if flags&serverIndexFlag != 0 {
		idx, err := ReadUint32(r)
		if err != nil {
			return ExpandedNodeId{}, err
		}
		result.ServerIndex = idx
		result.HasServerIndex = true
	}
	return result, nil
}

// countingBuffer is a minimal in-memory Writer used to pre-render a
// NodeId so its leading encoding byte can have flag bits OR'd in before
// the bytes reach the wire.
type countingBuffer struct{ bytes []byte }

func (b *countingBuffer) Write(p []byte) (int, error) {
	b.bytes = append(b.bytes, p...)
	return len(p), nil
}

// flagAwareReader reads the leading encoding byte once, splits off the
// flag bits, then lets decodeNodeIdBody read the rest of the identifier
// as if the flag bits had never been set.
type flagAwareReader struct {
	r Reader
}

func (f *flagAwareReader) Read(p []byte) (int, error) { return f.r.Read(p) }

func (f *flagAwareReader) readFlagsAndEncoding() (flags byte, encoding byte, err error) {
	b, err := ReadByte(f.r)
	if err != nil {
		return 0, 0, err
	}
	flags = b & (namespaceURIFlag | serverIndexFlag)
	encoding = b & nodeIDEncodingMask
	return flags, encoding, nil
}

// decodeNodeIdBody decodes everything after the leading encoding byte,
// given that byte was already consumed and classified as encoding.
func decodeNodeIdBody(r Reader, encoding byte, limits EncodingLimits) (NodeId, error) {
	switch encoding {
	case nodeIDEncodingTwoByte:
		id, err := ReadByte(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(0, uint32(id)), nil
	case nodeIDEncodingFourByte:
		ns, err := ReadByte(r)
		if err != nil {
			return NodeId{}, err
		}
		id, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(uint16(ns), uint32(id)), nil
	case nodeIDEncodingNumeric:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		id, err := ReadUint32(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewNumericNodeId(ns, id), nil
	case nodeIDEncodingString:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		s, err := DecodeString(r, limits)
		if err != nil {
			return NodeId{}, err
		}
		return NewStringNodeId(ns, s.String()), nil
	case nodeIDEncodingGUID:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		g, err := DecodeGuid(r)
		if err != nil {
			return NodeId{}, err
		}
		return NewGuidNodeId(ns, g), nil
	case nodeIDEncodingByteString:
		ns, err := ReadUint16(r)
		if err != nil {
			return NodeId{}, err
		}
		b, err := DecodeByteString(r, limits)
		if err != nil {
			return NodeId{}, err
		}
		return NewByteStringNodeId(ns, b.Value), nil
	default:
		return NodeId{}, fmt.Errorf("opcua: decode node id: unknown encoding byte 0x%02x: %w", encoding, ErrDecoding)
	}
}
