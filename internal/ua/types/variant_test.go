package types_test

import (
	"bytes"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/types"
)

func TestVariantScalarRoundTrip(t *testing.T) {
	t.Parallel()

	v := types.NewVariant(types.VariantTypeInt32, int32(7))
	var buf bytes.Buffer
	if _, err := v.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes()[0]; got != 0x06 {
		t.Fatalf("tag byte = 0x%02x, want 0x06", got)
	}

	decoded, err := types.DecodeVariant(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.IsArray || decoded.Type != types.VariantTypeInt32 || decoded.Value.(int32) != 7 {
		t.Fatalf("decoded variant = %+v, want scalar Int32(7)", decoded)
	}
}

func TestVariantArrayRoundTrip(t *testing.T) {
	t.Parallel()

	v := types.NewVariantArray(types.VariantTypeUInt16, []any{uint16(1), uint16(2), uint16(3)}, nil)
	var buf bytes.Buffer
	if _, err := v.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes()[0]; got != (0x80 | 0x05) {
		t.Fatalf("tag byte = 0x%02x, want 0x85", got)
	}

	decoded, err := types.DecodeVariant(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.IsArray || len(decoded.Elements) != 3 {
		t.Fatalf("decoded variant = %+v, want 3-element array", decoded)
	}
	for i, want := range []uint16{1, 2, 3} {
		if decoded.Elements[i].(uint16) != want {
			t.Fatalf("element %d = %v, want %d", i, decoded.Elements[i], want)
		}
	}
}

func TestVariantMultiDimensionalArray(t *testing.T) {
	t.Parallel()

	v := types.NewVariantArray(types.VariantTypeBoolean,
		[]any{true, false, true, false},
		[]int32{2, 2})

	var buf bytes.Buffer
	if _, err := v.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := types.DecodeVariant(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.ArrayDimensions) != 2 || decoded.ArrayDimensions[0] != 2 || decoded.ArrayDimensions[1] != 2 {
		t.Fatalf("decoded dimensions = %v, want [2 2]", decoded.ArrayDimensions)
	}
}

func TestVariantNull(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := (&types.Variant{}).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x00}) {
		t.Fatalf("null variant encoded as % x, want 00", got)
	}

	decoded, err := types.DecodeVariant(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Type != types.VariantTypeNull {
		t.Fatalf("decoded type = %v, want Null", decoded.Type)
	}
}
