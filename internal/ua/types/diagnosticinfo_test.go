package types_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/types"
)

func TestDiagnosticInfoRoundTrip(t *testing.T) {
	t.Parallel()

	d := &types.DiagnosticInfo{
		SymbolicID:         3,
		HasSymbolicID:      true,
		AdditionalInfo:     types.NewString("extra context"),
		HasAdditionalInfo:  true,
		InnerStatusCode:    types.BadNodeIdUnknown,
		HasInnerStatusCode: true,
	}

	var buf bytes.Buffer
	if _, err := d.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := types.DecodeDiagnosticInfo(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.HasSymbolicID || decoded.SymbolicID != 3 {
		t.Fatalf("decoded symbolic id = %d (present=%v), want 3", decoded.SymbolicID, decoded.HasSymbolicID)
	}
	if decoded.AdditionalInfo.String() != "extra context" {
		t.Fatalf("decoded additional info = %q", decoded.AdditionalInfo.String())
	}
	if decoded.InnerStatusCode != types.BadNodeIdUnknown {
		t.Fatalf("decoded inner status = %v", decoded.InnerStatusCode)
	}
	if decoded.InnerDiagnosticInfo != nil {
		t.Fatal("decoded an inner diagnostic info that was never set")
	}
}

func TestDiagnosticInfoLocaleAndLocalizedTextRoundTrip(t *testing.T) {
	t.Parallel()

	// Locale and LocalizedText are both present: Locale must be written
	// (and read back) before LocalizedText even though the LocalizedText
	// mask bit (0x04) is numerically lower than Locale's (0x08).
	d := &types.DiagnosticInfo{
		Locale:           7,
		HasLocale:        true,
		LocalizedText:    9,
		HasLocalizedText: true,
	}

	var buf bytes.Buffer
	if _, err := d.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	if len(raw) != 1+4+4 {
		t.Fatalf("encoded length = %d, want 9 (mask + two int32s)", len(raw))
	}
	wantLocale := int32(7)
	gotLocale := int32(raw[1]) | int32(raw[2])<<8 | int32(raw[3])<<16 | int32(raw[4])<<24
	if gotLocale != wantLocale {
		t.Fatalf("first int32 on the wire = %d, want Locale (%d) to precede LocalizedText", gotLocale, wantLocale)
	}

	decoded, err := types.DecodeDiagnosticInfo(bytes.NewReader(raw), types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.HasLocale || decoded.Locale != 7 {
		t.Fatalf("decoded locale = %d (present=%v), want 7", decoded.Locale, decoded.HasLocale)
	}
	if !decoded.HasLocalizedText || decoded.LocalizedText != 9 {
		t.Fatalf("decoded localized text = %d (present=%v), want 9", decoded.LocalizedText, decoded.HasLocalizedText)
	}
}

func TestDiagnosticInfoRecursionCap(t *testing.T) {
	t.Parallel()

	// Hand-craft a stream with more "inner diagnostic info present" mask
	// bytes than the cap allows (Encode itself always truncates before
	// producing such a stream, so this simulates a hostile peer).
	const maskInnerOnly = 0x40
	raw := bytes.Repeat([]byte{maskInnerOnly}, types.MaxDiagnosticInfoDepth+1)

	_, err := types.DecodeDiagnosticInfo(bytes.NewReader(raw), types.DefaultEncodingLimits())
	if err == nil {
		t.Fatal("expected decode error for over-deep diagnostic info chain")
	}
	if !errors.Is(err, types.ErrDecoding) {
		t.Fatalf("error = %v, want wrapping ErrDecoding", err)
	}
}

func TestDiagnosticInfoEncodeTruncatesOverDepthChain(t *testing.T) {
	t.Parallel()

	// Encode must never recurse past the cap either: the innermost bit is
	// dropped instead of producing a chain decode would then reject.
	var chain *types.DiagnosticInfo
	for i := 0; i <= types.MaxDiagnosticInfoDepth+5; i++ {
		chain = &types.DiagnosticInfo{InnerDiagnosticInfo: chain}
	}

	var buf bytes.Buffer
	if _, err := chain.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := types.DecodeDiagnosticInfo(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatalf("encode should have truncated the chain to a decodable depth: %v", err)
	}
	_ = decoded
}
