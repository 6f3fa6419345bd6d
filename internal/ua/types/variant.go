package types

import "fmt"

// VariantType is the BuiltInType discriminator carried in a Variant's tag
// byte (spec §3).
type VariantType uint8

// The subset of BuiltInType values this stack encodes and decodes.
const (
	VariantTypeNull VariantType = 0
	VariantTypeBoolean VariantType = 1
	VariantTypeSByte VariantType = 2
	VariantTypeByte VariantType = 3
	VariantTypeInt16 VariantType = 4
	VariantTypeUInt16 VariantType = 5
	VariantTypeInt32 VariantType = 6
	VariantTypeUInt32 VariantType = 7
	VariantTypeInt64 VariantType = 8
	VariantTypeUInt64 VariantType = 9
	VariantTypeFloat VariantType = 10
	VariantTypeDouble VariantType = 11
	VariantTypeString VariantType = 12
	VariantTypeDateTime VariantType = 13
	VariantTypeGuid VariantType = 14
	VariantTypeByteString VariantType = 15
	VariantTypeNodeId VariantType = 17
	VariantTypeExpandedNodeId VariantType = 18
	VariantTypeStatusCode VariantType = 19
	VariantTypeQualifiedName VariantType = 20
	VariantTypeLocalizedText VariantType = 21
	VariantTypeExtensionObject VariantType = 22
)

const (
	variantArrayFlag      byte = 0x80
	variantDimensionsFlag byte = 0x40
	variantTypeMask       byte = 0x3F
)

// Variant is a discriminated union holding any single OPC UA primitive or
// composite value, or a (possibly multi-dimensional) array of one kind
// (spec §3). The zero value is a null Variant.
type Variant struct {
	Type  VariantType
	Value any // scalar payload; unused when IsArray is true

	IsArray         bool
	Elements        []any // payloads when IsArray is true
	ArrayDimensions []int32
}

// NewVariant wraps a single scalar value of the given type.
func NewVariant(t VariantType, v any) *Variant {
	return &Variant{Type: t, Value: v}
}

// NewVariantArray wraps a flat or multi-dimensional array. Pass nil
// dimensions for a flat array.
func NewVariantArray(t VariantType, elements []any, dimensions []int32) *Variant {
	return &Variant{Type: t, IsArray: true, Elements: elements, ArrayDimensions: dimensions}
}

func (v *Variant) tag() byte {
	tag := byte(v.Type) & variantTypeMask
	if v.IsArray {
		tag |= variantArrayFlag
		if len(v.ArrayDimensions) > 0 {
			tag |= variantDimensionsFlag
		}
	}
	return tag
}

// Encode writes v's tag byte followed by its scalar value, or its array
// length, elements, and (if present) dimensions.
func (v *Variant) Encode(w Writer) (int, error) {
	total, err := WriteByte(w, v.tag())
	if err != nil {
		return total, err
	}

	if !v.IsArray {
		c, err := encodeScalar(w, v.Type, v.Value)
		total += c
		return total, err
	}

	c, err := WriteArrayLength(w, len(v.Elements))
	total += c
	if err != nil {
		return total, err
	}
	for _, elem := range v.Elements {
		c, err := encodeScalar(w, v.Type, elem)
		total += c
		if err != nil {
			return total, err
		}
	}
	if len(v.ArrayDimensions) > 0 {
		c, err := WriteArrayLength(w, len(v.ArrayDimensions))
		total += c
		if err != nil {
			return total, err
		}
		for _, d := range v.ArrayDimensions {
			c, err := WriteInt32(w, d)
			total += c
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// DecodeVariant reads a Variant from r.
func DecodeVariant(r Reader, limits EncodingLimits) (*Variant, error) {
	tag, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	vt := VariantType(tag & variantTypeMask)
	isArray := tag&variantArrayFlag != 0
	hasDims := tag&variantDimensionsFlag != 0

	if vt == VariantTypeNull && !isArray {
		return &Variant{Type: VariantTypeNull}, nil
	}

	if !isArray {
		val, err := decodeScalar(r, vt, limits)
		if err != nil {
			return nil, err
		}
		return &Variant{Type: vt, Value: val}, nil
	}

	n, err := DecodeArrayLength(r, limits)
	if err != nil {
		return nil, err
	}
	elems := make([]any, 0)
	if n > 0 {
		elems = make([]any, n)
		for i := range elems {
			elems[i], err = decodeScalar(r, vt, limits)
			if err != nil {
				return nil, err
			}
		}
	}

	var dims []int32
	if hasDims {
		dn, err := DecodeArrayLength(r, limits)
		if err != nil {
			return nil, err
		}
		if dn > 0 {
			dims = make([]int32, dn)
			for i := range dims {
				dims[i], err = ReadInt32(r)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return &Variant{Type: vt, IsArray: true, Elements: elems, ArrayDimensions: dims}, nil
}

func encodeScalar(w Writer, t VariantType, v any) (int, error) {
	switch t {
	case VariantTypeBoolean:
		return WriteBoolean(w, v.(bool))
	case VariantTypeSByte:
		return WriteSByte(w, v.(int8))
	case VariantTypeByte:
		return WriteByte(w, v.(uint8))
	case VariantTypeInt16:
		return WriteInt16(w, v.(int16))
	case VariantTypeUInt16:
		return WriteUint16(w, v.(uint16))
	case VariantTypeInt32:
		return WriteInt32(w, v.(int32))
	case VariantTypeUInt32:
		return WriteUint32(w, v.(uint32))
	case VariantTypeInt64:
		return WriteInt64(w, v.(int64))
	case VariantTypeUInt64:
		return WriteUint64(w, v.(uint64))
	case VariantTypeFloat:
		return WriteFloat(w, v.(float32))
	case VariantTypeDouble:
		return WriteDouble(w, v.(float64))
	case VariantTypeString:
		return v.(UAString).Encode(w)
	case VariantTypeDateTime:
		return v.(DateTime).Encode(w)
	case VariantTypeGuid:
		return v.(Guid).Encode(w)
	case VariantTypeByteString:
		return v.(ByteString).Encode(w)
	case VariantTypeNodeId:
		return v.(NodeId).Encode(w)
	case VariantTypeExpandedNodeId:
		return v.(ExpandedNodeId).Encode(w)
	case VariantTypeStatusCode:
		return v.(StatusCode).Encode(w)
	case VariantTypeQualifiedName:
		return v.(QualifiedName).Encode(w)
	case VariantTypeLocalizedText:
		return v.(LocalizedText).Encode(w)
	case VariantTypeExtensionObject:
		return v.(*ExtensionObject).Encode(w)
	default:
		return 0, fmt.Errorf("opcua: encode variant: unsupported type %d: %w", t, ErrDecoding)
	}
}

func decodeScalar(r Reader, t VariantType, limits EncodingLimits) (any, error) {
	switch t {
	case VariantTypeBoolean:
		return ReadBoolean(r)
	case VariantTypeSByte:
		return ReadSByte(r)
	case VariantTypeByte:
		return ReadByte(r)
	case VariantTypeInt16:
		return ReadInt16(r)
	case VariantTypeUInt16:
		return ReadUint16(r)
	case VariantTypeInt32:
		return ReadInt32(r)
	case VariantTypeUInt32:
		return ReadUint32(r)
	case VariantTypeInt64:
		return ReadInt64(r)
	case VariantTypeUInt64:
		return ReadUint64(r)
	case VariantTypeFloat:
		return ReadFloat(r)
	case VariantTypeDouble:
		return ReadDouble(r)
	case VariantTypeString:
		return DecodeString(r, limits)
	case VariantTypeDateTime:
		return DecodeDateTime(r)
	case VariantTypeGuid:
		return DecodeGuid(r)
	case VariantTypeByteString:
		return DecodeByteString(r, limits)
	case VariantTypeNodeId:
		return DecodeNodeId(r, limits)
	case VariantTypeExpandedNodeId:
		return DecodeExpandedNodeId(r, limits)
	case VariantTypeStatusCode:
		return DecodeStatusCode(r)
	case VariantTypeQualifiedName:
		return DecodeQualifiedName(r, limits)
	case VariantTypeLocalizedText:
		return DecodeLocalizedText(r, limits)
	case VariantTypeExtensionObject:
		return DecodeExtensionObject(r, limits)
	default:
		return nil, fmt.Errorf("opcua: decode variant: unsupported type %d: %w", t, ErrDecoding)
	}
}
