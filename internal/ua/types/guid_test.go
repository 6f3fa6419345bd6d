package types_test

import (
	"bytes"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/types"
)

// TestGuidParseFormatRoundTrip verifies both the string round-trip and the
// exact binary layout for a known GUID.
func TestGuidParseFormatRoundTrip(t *testing.T) {
	t.Parallel()

	const s = "72962B91-FA75-4AE6-8D28-B404DC7DAF63"

	g, err := types.ParseGuid(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.String(); got != s {
		t.Fatalf("String() = %q, want %q", got, s)
	}

	var buf bytes.Buffer
	if _, err := g.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x91, 0x2B, 0x96, 0x72,
		0x75, 0xFA,
		0xE6, 0x4A,
		0x8D, 0x28, 0xB4, 0x04, 0xDC, 0x7D, 0xAF, 0x63,
	}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("encoded guid = % X, want % X", got, want)
	}

	decoded, err := types.DecodeGuid(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != g {
		t.Fatalf("decoded guid %+v != original %+v", decoded, g)
	}
}

func TestGuidParsePlainHex(t *testing.T) {
	t.Parallel()

	g1, err := types.ParseGuid("72962B91-FA75-4AE6-8D28-B404DC7DAF63")
	if err != nil {
		t.Fatal(err)
	}
	g2, err := types.ParseGuid("72962B91FA754AE68D28B404DC7DAF63")
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Fatalf("hyphenated and plain-hex forms produced different GUIDs: %+v != %+v", g1, g2)
	}
}

func TestGuidParseInvalid(t *testing.T) {
	t.Parallel()

	if _, err := types.ParseGuid("not-a-guid"); err == nil {
		t.Fatal("expected parse error")
	}
}
