package transport_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/transport"
	"github.com/industrial-go/opcua/internal/ua/types"
)

func TestWriteReadChunkRoundTripMessage(t *testing.T) {
	t.Parallel()

	want := transport.Chunk{
		MessageType:     transport.MessageTypeMessage,
		ChunkType:       transport.ChunkTypeFinal,
		SecureChannelID: 7,
		TokenID:         42,
		SequenceNumber:  100,
		RequestID:       5,
		Body:            []byte("hello opcua"),
	}

	var buf bytes.Buffer
	if err := transport.WriteChunk(&buf, want); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	got, err := transport.ReadChunk(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	defer transport.ReleaseChunk(got)

	if got.MessageType != want.MessageType {
		t.Errorf("MessageType = %q, want %q", got.MessageType, want.MessageType)
	}
	if got.ChunkType != want.ChunkType {
		t.Errorf("ChunkType = %q, want %q", got.ChunkType, want.ChunkType)
	}
	if got.SecureChannelID != want.SecureChannelID {
		t.Errorf("SecureChannelID = %d, want %d", got.SecureChannelID, want.SecureChannelID)
	}
	if got.TokenID != want.TokenID {
		t.Errorf("TokenID = %d, want %d", got.TokenID, want.TokenID)
	}
	if got.SequenceNumber != want.SequenceNumber {
		t.Errorf("SequenceNumber = %d, want %d", got.SequenceNumber, want.SequenceNumber)
	}
	if got.RequestID != want.RequestID {
		t.Errorf("RequestID = %d, want %d", got.RequestID, want.RequestID)
	}
	if !bytes.Equal(got.Body, want.Body) {
		t.Errorf("Body = %q, want %q", got.Body, want.Body)
	}
}

func TestWriteReadChunkRoundTripHello(t *testing.T) {
	t.Parallel()

	want := transport.Chunk{
		MessageType: transport.MessageTypeHello,
		ChunkType:   transport.ChunkTypeFinal,
		Body:        []byte("endpoint-url-bytes"),
	}

	var buf bytes.Buffer
	if err := transport.WriteChunk(&buf, want); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	got, err := transport.ReadChunk(&buf, types.DefaultEncodingLimits())
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	defer transport.ReleaseChunk(got)

	if got.SecureChannelID != 0 || got.TokenID != 0 || got.SequenceNumber != 0 || got.RequestID != 0 {
		t.Errorf("HEL chunk should carry zero sequence fields, got %+v", got)
	}
	if !bytes.Equal(got.Body, want.Body) {
		t.Errorf("Body = %q, want %q", got.Body, want.Body)
	}
}

func TestReadChunkRejectsOversizedMessage(t *testing.T) {
	t.Parallel()

	limits := types.DefaultEncodingLimits()
	limits.MaxMessageLength = 16

	c := transport.Chunk{
		MessageType: transport.MessageTypeMessage,
		ChunkType:   transport.ChunkTypeFinal,
		Body:        bytes.Repeat([]byte{0xAB}, 64),
	}

	var buf bytes.Buffer
	if err := transport.WriteChunk(&buf, c); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	_, err := transport.ReadChunk(&buf, limits)
	if !errors.Is(err, transport.ErrChunkTooLarge) {
		t.Fatalf("ReadChunk error = %v, want ErrChunkTooLarge", err)
	}
}

func TestReadChunkRejectsShortFrame(t *testing.T) {
	t.Parallel()

	// A message-security chunk declaring fewer bytes than header+sequence header.
	raw := []byte{'M', 'S', 'G', 'F', 12, 0, 0, 0, 1, 2, 3, 4}

	_, err := transport.ReadChunk(bytes.NewReader(raw), types.DefaultEncodingLimits())
	if !errors.Is(err, transport.ErrShortChunk) {
		t.Fatalf("ReadChunk error = %v, want ErrShortChunk", err)
	}
}

func TestWriteChunkMultipleSequential(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for i := uint32(0); i < 3; i++ {
		c := transport.Chunk{
			MessageType:     transport.MessageTypeMessage,
			ChunkType:       transport.ChunkTypeFinal,
			SecureChannelID: 1,
			TokenID:         1,
			SequenceNumber:  i + 1,
			RequestID:       i,
			Body:            []byte{byte(i)},
		}
		if err := transport.WriteChunk(&buf, c); err != nil {
			t.Fatalf("WriteChunk %d: %v", i, err)
		}
	}

	for i := uint32(0); i < 3; i++ {
		got, err := transport.ReadChunk(&buf, types.DefaultEncodingLimits())
		if err != nil {
			t.Fatalf("ReadChunk %d: %v", i, err)
		}
		if got.SequenceNumber != i+1 {
			t.Errorf("chunk %d: SequenceNumber = %d, want %d", i, got.SequenceNumber, i+1)
		}
		transport.ReleaseChunk(got)
	}
}
