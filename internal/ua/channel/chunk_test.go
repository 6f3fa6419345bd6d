package channel_test

import (
	"errors"
	"math"
	"testing"

	"github.com/industrial-go/opcua/internal/ua/channel"
)

func TestValidateSequenceNumberAcceptsStrictIncrease(t *testing.T) {
	if !channel.ValidateSequenceNumber(5, 6) {
		t.Fatalf("want 6 to succeed 5")
	}
	if channel.ValidateSequenceNumber(6, 6) {
		t.Fatalf("want equal sequence numbers to be rejected")
	}
	if channel.ValidateSequenceNumber(6, 5) {
		t.Fatalf("want a regression to be rejected")
	}
}

func TestValidateSequenceNumberAllowsWrapPastThreshold(t *testing.T) {
	last := uint32(math.MaxUint32 - 10)
	if !channel.ValidateSequenceNumber(last, 1) {
		t.Fatalf("want wrap-around accepted once last is within 1024 of overflow")
	}
}

func TestReassemblerSingleChunkRequest(t *testing.T) {
	r := channel.NewReassembler()
	body, complete, err := r.Feed(1, 100, channel.ChunkStateFinal, []byte("hello"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !complete || string(body) != "hello" {
		t.Fatalf("want complete body %q, got complete=%v body=%q", "hello", complete, body)
	}
}

func TestReassemblerMultiChunkRequest(t *testing.T) {
	r := channel.NewReassembler()

	if _, complete, err := r.Feed(1, 100, channel.ChunkStateContinuation, []byte("hel")); err != nil || complete {
		t.Fatalf("first chunk: complete=%v err=%v", complete, err)
	}
	if _, complete, err := r.Feed(2, 100, channel.ChunkStateContinuation, []byte("lo ")); err != nil || complete {
		t.Fatalf("second chunk: complete=%v err=%v", complete, err)
	}
	body, complete, err := r.Feed(3, 100, channel.ChunkStateFinal, []byte("world"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !complete || string(body) != "hello world" {
		t.Fatalf("want \"hello world\", got complete=%v body=%q", complete, body)
	}
}

func TestReassemblerAbortDiscardsInFlightMessage(t *testing.T) {
	r := channel.NewReassembler()

	if _, _, err := r.Feed(1, 100, channel.ChunkStateContinuation, []byte("partial")); err != nil {
		t.Fatal(err)
	}
	if _, complete, err := r.Feed(2, 100, channel.ChunkStateAbort, nil); err != nil || complete {
		t.Fatalf("abort: complete=%v err=%v", complete, err)
	}

	// A fresh Final for the same request id after Abort starts clean.
	body, complete, err := r.Feed(3, 100, channel.ChunkStateFinal, []byte("fresh"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !complete || string(body) != "fresh" {
		t.Fatalf("want fresh single-chunk body, got complete=%v body=%q", complete, body)
	}
}

func TestReassemblerRejectsSequenceRegression(t *testing.T) {
	r := channel.NewReassembler()
	if _, _, err := r.Feed(5, 100, channel.ChunkStateFinal, []byte("a")); err != nil {
		t.Fatal(err)
	}
	_, _, err := r.Feed(5, 101, channel.ChunkStateFinal, []byte("b"))
	if !errors.Is(err, channel.ErrSequenceRegression) {
		t.Fatalf("want ErrSequenceRegression, got %v", err)
	}
}
