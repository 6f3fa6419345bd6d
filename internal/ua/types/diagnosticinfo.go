package types

import "fmt"

// DiagnosticInfo presence bits — spec §3 "DiagnosticInfo".
const (
	diagHasSymbolicID          byte = 0x01
	diagHasNamespaceURI        byte = 0x02
	diagHasLocalizedText       byte = 0x04
	diagHasLocale              byte = 0x08
	diagHasAdditionalInfo      byte = 0x10
	diagHasInnerStatusCode     byte = 0x20
	diagHasInnerDiagnosticInfo byte = 0x40
)

// MaxDiagnosticInfoDepth bounds inner-diagnostic-info recursion to prevent
// stack exhaustion from a maliciously or accidentally deep chain.
const MaxDiagnosticInfoDepth = 100

// DiagnosticInfo carries extended error context alongside a StatusCode
// (spec §3). Every field is independently optional; an absent field keeps
// its zero value and its Has* flag is false (InnerDiagnosticInfo is nil).
type DiagnosticInfo struct {
	SymbolicID          int32
	HasSymbolicID       bool
	NamespaceURI        int32
	HasNamespaceURI     bool
	Locale              int32
	HasLocale           bool
	LocalizedText       int32
	HasLocalizedText    bool
	AdditionalInfo      UAString
	HasAdditionalInfo   bool
	InnerStatusCode     StatusCode
	HasInnerStatusCode  bool
	InnerDiagnosticInfo *DiagnosticInfo
}

func (d *DiagnosticInfo) encodingMask() byte {
	mask := byte(0)
	if d.HasSymbolicID {
		mask |= diagHasSymbolicID
	}
	if d.HasNamespaceURI {
		mask |= diagHasNamespaceURI
	}
	if d.HasLocalizedText {
		mask |= diagHasLocalizedText
	}
	if d.HasLocale {
		mask |= diagHasLocale
	}
	if d.HasAdditionalInfo {
		mask |= diagHasAdditionalInfo
	}
	if d.HasInnerStatusCode {
		mask |= diagHasInnerStatusCode
	}
	if d.InnerDiagnosticInfo != nil {
		mask |= diagHasInnerDiagnosticInfo
	}
	return mask
}

// Encode writes d's presence mask followed by each present field, in mask
// bit order except that Locale (0x08) is written before LocalizedText
// (0x04). Inner diagnostic info beyond
// MaxDiagnosticInfoDepth is truncated: the inner-diagnostic-info bit is
// dropped rather than recursing further.
func (d *DiagnosticInfo) Encode(w Writer) (int, error) {
	return d.encode(w, 0)
}

func (d *DiagnosticInfo) encode(w Writer, depth int) (int, error) {
	mask := d.encodingMask()
	if depth >= MaxDiagnosticInfoDepth-1 {
		// One more level of nesting would fail DecodeDiagnosticInfo's own
		// depth check; drop the inner-info bit here instead of producing
		// bytes a conforming decoder would then reject.
		mask &^= diagHasInnerDiagnosticInfo
	}

	total, err := WriteByte(w, mask)
	if err != nil {
		return total, err
	}
	if mask&diagHasSymbolicID != 0 {
		c, err := WriteInt32(w, d.SymbolicID)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasNamespaceURI != 0 {
		c, err := WriteInt32(w, d.NamespaceURI)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasLocale != 0 {
		c, err := WriteInt32(w, d.Locale)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasLocalizedText != 0 {
		c, err := WriteInt32(w, d.LocalizedText)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasAdditionalInfo != 0 {
		c, err := d.AdditionalInfo.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasInnerStatusCode != 0 {
		c, err := d.InnerStatusCode.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&diagHasInnerDiagnosticInfo != 0 {
		c, err := d.InnerDiagnosticInfo.encode(w, depth+1)
		total += c
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeDiagnosticInfo reads a DiagnosticInfo from r, rejecting chains
// deeper than MaxDiagnosticInfoDepth with ErrDecoding.
func DecodeDiagnosticInfo(r Reader, limits EncodingLimits) (*DiagnosticInfo, error) {
	return decodeDiagnosticInfo(r, limits, 0)
}

func decodeDiagnosticInfo(r Reader, limits EncodingLimits, depth int) (*DiagnosticInfo, error) {
	if depth >= MaxDiagnosticInfoDepth {
		return nil, fmt.Errorf("opcua: diagnostic info nesting exceeds %d: %w", MaxDiagnosticInfoDepth, ErrDecoding)
	}
	mask, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	d := &DiagnosticInfo{}
	if mask&diagHasSymbolicID != 0 {
		d.SymbolicID, err = ReadInt32(r)
		if err != nil {
			return nil, err
		}
		d.HasSymbolicID = true
	}
	if mask&diagHasNamespaceURI != 0 {
		d.NamespaceURI, err = ReadInt32(r)
		if err != nil {
			return nil, err
		}
		d.HasNamespaceURI = true
	}
	if mask&diagHasLocale != 0 {
		d.Locale, err = ReadInt32(r)
		if err != nil {
			return nil, err
		}
		d.HasLocale = true
	}
	if mask&diagHasLocalizedText != 0 {
		d.LocalizedText, err = ReadInt32(r)
		if err != nil {
			return nil, err
		}
		d.HasLocalizedText = true
	}
	if mask&diagHasAdditionalInfo != 0 {
		d.AdditionalInfo, err = DecodeString(r, limits)
		if err != nil {
			return nil, err
		}
		d.HasAdditionalInfo = true
	}
	if mask&diagHasInnerStatusCode != 0 {
		d.InnerStatusCode, err = DecodeStatusCode(r)
		if err != nil {
			return nil, err
		}
		d.HasInnerStatusCode = true
	}
	if mask&diagHasInnerDiagnosticInfo != 0 {
		d.InnerDiagnosticInfo, err = decodeDiagnosticInfo(r, limits, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}
