package server_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/industrial-go/opcua/internal/server"
	"github.com/industrial-go/opcua/internal/ua/session"
)

func TestLoggingHandlerPassesThroughResponse(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	called := false
	h := server.LoggingHandler(logger, session.MessageTypeBrowse, func(_ *session.Session, body any) (any, error) {
		called = true
		return "ok", nil
	})

	resp, err := h(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Errorf("resp = %v, want %q", resp, "ok")
	}
	if !called {
		t.Error("wrapped handler was not called")
	}
}

func TestLoggingHandlerPassesThroughError(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	wantErr := errors.New("boom")
	h := server.LoggingHandler(logger, session.MessageTypeBrowse, func(_ *session.Session, _ any) (any, error) {
		return nil, wantErr
	})

	_, err := h(nil, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestRecoveryHandlerRecoversPanic(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	h := server.RecoveryHandler(logger, session.MessageTypeBrowse, func(_ *session.Session, _ any) (any, error) {
		panic("intentional test panic")
	})

	_, err := h(nil, nil)
	if !errors.Is(err, server.ErrPanicRecovered) {
		t.Fatalf("error = %v, want ErrPanicRecovered", err)
	}
}

func TestRecoveryHandlerPassesThroughOnNoPanic(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	h := server.RecoveryHandler(logger, session.MessageTypeBrowse, func(_ *session.Session, _ any) (any, error) {
		return 42, nil
	})

	resp, err := h(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != 42 {
		t.Errorf("resp = %v, want 42", resp)
	}
}
