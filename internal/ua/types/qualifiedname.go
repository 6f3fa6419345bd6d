package types

// QualifiedName is a name qualified by a namespace index (spec §3), used
// for browse names throughout the address space.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           UAString
}

// NewQualifiedName builds a present QualifiedName.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: NewString(name)}
}

// ByteLen returns the encoded size of q.
func (q QualifiedName) ByteLen() int { return 2 + q.Name.ByteLen() }

// Encode writes the namespace index followed by the name string.
func (q QualifiedName) Encode(w Writer) (int, error) {
	total, err := WriteUint16(w, q.NamespaceIndex)
	if err != nil {
		return total, err
	}
	c, err := q.Name.Encode(w)
	return total + c, err
}

// DecodeQualifiedName reads a QualifiedName from r.
func DecodeQualifiedName(r Reader, limits EncodingLimits) (QualifiedName, error) {
	ns, err := ReadUint16(r)
	if err != nil {
		return QualifiedName{}, err
	}
	name, err := DecodeString(r, limits)
	if err != nil {
		return QualifiedName{}, err
	}
	return QualifiedName{NamespaceIndex: ns, Name: name}, nil
}

// LocalizedText presence bits — spec §3 "LocalizedText".
const (
	localizedTextHasLocale byte = 0x01
	localizedTextHasText   byte = 0x02
)

// LocalizedText pairs a locale identifier with human-readable text, either
// of which may be independently absent (spec §3).
type LocalizedText struct {
	Locale UAString
	Text   UAString
}

// NewLocalizedText builds a LocalizedText with both fields present.
func NewLocalizedText(locale, text string) LocalizedText {
	return LocalizedText{Locale: NewString(locale), Text: NewString(text)}
}

func (l LocalizedText) encodingMask() byte {
	mask := byte(0)
	if !l.Locale.IsNull() {
		mask |= localizedTextHasLocale
	}
	if !l.Text.IsNull() {
		mask |= localizedTextHasText
	}
	return mask
}

// ByteLen returns the encoded size of l.
func (l LocalizedText) ByteLen() int {
	n := 1
	mask := l.encodingMask()
	if mask&localizedTextHasLocale != 0 {
		n += l.Locale.ByteLen()
	}
	if mask&localizedTextHasText != 0 {
		n += l.Text.ByteLen()
	}
	return n
}

// Encode writes l's presence mask followed by whichever fields are set.
func (l LocalizedText) Encode(w Writer) (int, error) {
	mask := l.encodingMask()
	total, err := WriteByte(w, mask)
	if err != nil {
		return total, err
	}
	if mask&localizedTextHasLocale != 0 {
		c, err := l.Locale.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&localizedTextHasText != 0 {
		c, err := l.Text.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeLocalizedText reads a LocalizedText from r.
func DecodeLocalizedText(r Reader, limits EncodingLimits) (LocalizedText, error) {
	mask, err := ReadByte(r)
	if err != nil {
		return LocalizedText{}, err
	}
	var l LocalizedText
	if mask&localizedTextHasLocale != 0 {
		l.Locale, err = DecodeString(r, limits)
		if err != nil {
			return LocalizedText{}, err
		}
	}
	if mask&localizedTextHasText != 0 {
		l.Text, err = DecodeString(r, limits)
		if err != nil {
			return LocalizedText{}, err
		}
	}
	return l, nil
}
