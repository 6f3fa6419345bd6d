package types_test

import (
	"bytes"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/types"
)

func TestNodeIdCompactForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      types.NodeId
		wantLen int
		wantTag byte
	}{
		{"two byte form", types.NewNumericNodeId(0, 42), 2, 0x00},
		{"four byte form", types.NewNumericNodeId(3, 1000), 4, 0x01},
		{"full numeric form, large namespace", types.NewNumericNodeId(500, 1), 7, 0x02},
		{"full numeric form, large id", types.NewNumericNodeId(0, 70000), 7, 0x02},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n, err := tc.id.Encode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if n != tc.wantLen {
				t.Fatalf("encoded %d bytes, want %d", n, tc.wantLen)
			}
			if n != tc.id.ByteLen() {
				t.Fatalf("Encode wrote %d bytes, ByteLen reports %d", n, tc.id.ByteLen())
			}
			raw := buf.Bytes()
			if raw[0] != tc.wantTag {
				t.Fatalf("encoding byte = 0x%02x, want 0x%02x", raw[0], tc.wantTag)
			}

			decoded, err := types.DecodeNodeId(&buf, types.DefaultEncodingLimits())
			if err != nil {
				t.Fatal(err)
			}
			if !decoded.Equal(tc.id) {
				t.Fatalf("decoded %v != original %v", decoded, tc.id)
			}
		})
	}
}

func TestNodeIdStringAndByteStringForms(t *testing.T) {
	t.Parallel()

	str := types.NewStringNodeId(2, "MyObject")
	var buf bytes.Buffer
	if _, err := str.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := types.DecodeNodeId(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(str) {
		t.Fatalf("decoded %v != original %v", decoded, str)
	}

	bs := types.NewByteStringNodeId(1, []byte{0x01, 0x02, 0x03})
	buf.Reset()
	if _, err := bs.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err = types.DecodeNodeId(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(bs) {
		t.Fatalf("decoded %v != original %v", decoded, bs)
	}
}

func TestNullNodeId(t *testing.T) {
	t.Parallel()

	if !(types.NodeId{}).IsNull() {
		t.Fatal("zero-value NodeId must be null")
	}
	if types.NewNumericNodeId(0, 1).IsNull() {
		t.Fatal("NodeId(0,1) must not be null")
	}
}

func TestExpandedNodeIdWithServerIndex(t *testing.T) {
	t.Parallel()

	e := types.ExpandedNodeId{
		NodeId:         types.NewNumericNodeId(1, 100),
		ServerIndex:    7,
		HasServerIndex: true,
	}
	var buf bytes.Buffer
	if _, err := e.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := types.DecodeExpandedNodeId(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.NodeId.Equal(e.NodeId) {
		t.Fatalf("decoded node id %v != original %v", decoded.NodeId, e.NodeId)
	}
	if !decoded.HasServerIndex || decoded.ServerIndex != 7 {
		t.Fatalf("decoded server index = %d (present=%v), want 7", decoded.ServerIndex, decoded.HasServerIndex)
	}
}
