// Package server implements the OPC UA TCP server: the accept loop, per-
// connection secure channel lifecycle, and the thin service-dispatch
// adapter wiring the session, address space, and view packages together.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/industrial-go/opcua/internal/config"
	uametrics "github.com/industrial-go/opcua/internal/metrics"
	"github.com/industrial-go/opcua/internal/ua/addrspace"
	"github.com/industrial-go/opcua/internal/ua/channel"
	"github.com/industrial-go/opcua/internal/ua/security"
	"github.com/industrial-go/opcua/internal/ua/session"
	"github.com/industrial-go/opcua/internal/ua/transport"
	"github.com/industrial-go/opcua/internal/ua/types"
	"github.com/industrial-go/opcua/internal/ua/view"
)

// Sentinel errors for the server package.
var (
	// ErrNoEndpointsConfigured indicates Config.Endpoints was empty at
	// construction time.
	ErrNoEndpointsConfigured = errors.New("server: no endpoints configured")

	// ErrUnsupportedMessageType indicates a chunk arrived with a message
	// type tag this server does not handle.
	ErrUnsupportedMessageType = errors.New("server: unsupported chunk message type")
)

// nonceLength is the byte length of the nonces this server generates for
// OpenSecureChannel/Renew exchanges.
const nonceLength = 32

// Server is the OPC UA TCP server. Each RPC-equivalent (OpenSecureChannel,
// CreateSession, Browse, ...) delegates to the session/channel/addrspace/
// view packages for actual domain logic; Server is a thin adapter between
// the TCP transport and that domain logic, the same way the teacher's
// BFDServer is a thin adapter between ConnectRPC and bfd.Manager.
type Server struct {
	listenAddr string
	policy     security.Policy
	limits     types.EncodingLimits

	addressSpace *addrspace.AddressSpace
	sessions     *session.SessionManager
	dispatcher   *session.Dispatcher

	channelIDs *channel.IDAllocator
	tokenIDs   *channel.IDAllocator

	logger  *slog.Logger
	metrics *uametrics.Collector

	mu       sync.Mutex
	listener net.Listener
}

// New constructs a Server from cfg. It bootstraps the standard address
// space (Root/Objects/Types/Views) and registers the view-service
// handlers (Browse, TranslateBrowsePathsToNodeIds) with the dispatcher.
func New(cfg *config.Config, logger *slog.Logger, metrics *uametrics.Collector) (*Server, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpointsConfigured
	}

	addressSpace, err := addrspace.Bootstrap()
	if err != nil {
		return nil, fmt.Errorf("server: bootstrap address space: %w", err)
	}

	srv := &Server{
		listenAddr: cfg.Server.ListenAddr,
		policy:     security.FromURI(cfg.Endpoints[0].SecurityPolicyURI),
		limits: types.EncodingLimits{
			MaxStringLength:     int32(cfg.Encoding.MaxStringLength),
			MaxByteStringLength: int32(cfg.Encoding.MaxStringLength),
			MaxArrayLength:      int32(cfg.Encoding.MaxArrayLength),
			MaxMessageLength:    int32(cfg.Encoding.MaxMessageSize),
		},
		addressSpace: addressSpace,
		sessions:     session.NewSessionManager(),
		dispatcher:   session.NewDispatcher(),
		channelIDs:   channel.NewIDAllocator(),
		tokenIDs:     channel.NewIDAllocator(),
		logger:       logger.With(slog.String("component", "server")),
		metrics:      metrics,
	}

	srv.registerHandlers()

	return srv, nil
}

// registerHandlers wires the view service into the dispatcher, wrapping
// each handler with logging and panic recovery.
func (s *Server) registerHandlers() {
	s.register(session.MessageTypeBrowse, s.handleBrowse)
	s.register(session.MessageTypeBrowseNext, s.handleBrowseNext)
	s.register(session.MessageTypeTranslateBrowsePaths, s.handleTranslateBrowsePaths)
	s.register(session.MessageTypeCreateSession, s.handleCreateSession)
	s.register(session.MessageTypeCloseSession, s.handleCloseSession)
}

// register installs h for msgType after wrapping it with recovery and
// logging middleware.
func (s *Server) register(msgType session.MessageType, h session.Handler) {
	wrapped := RecoveryHandler(s.logger, msgType, LoggingHandler(s.logger, msgType, h))
	s.dispatcher.Register(msgType, wrapped)
}

// BrowseParams is the Go-level parameter set s.handleBrowse expects as a
// dispatched request body (spec.md's service-message encoding above the
// chunk boundary is out of scope; callers construct this directly from
// already-decoded values).
type BrowseParams struct {
	ViewID                        types.NodeId
	NodesToBrowse                 []view.BrowseDescription
	RequestedMaxReferencesPerNode uint32
}

// BrowseResponse is handleBrowse's result shape.
type BrowseResponse struct {
	Results    []view.BrowseResult
	StatusCode types.StatusCode
}

func (s *Server) handleBrowse(_ *session.Session, body any) (any, error) {
	params, ok := body.(BrowseParams)
	if !ok {
		return nil, fmt.Errorf("server: handleBrowse: %w", ErrUnsupportedMessageType)
	}

	results, status := view.Browse(s.addressSpace, params.ViewID, params.NodesToBrowse, params.RequestedMaxReferencesPerNode)
	return BrowseResponse{Results: results, StatusCode: status}, nil
}

func (s *Server) handleBrowseNext(_ *session.Session, _ any) (any, error) {
	return view.BrowseNext(), nil
}

// TranslateBrowsePathsParams is handleTranslateBrowsePaths's expected body.
type TranslateBrowsePathsParams struct {
	BrowsePaths []view.BrowsePath
}

func (s *Server) handleTranslateBrowsePaths(_ *session.Session, body any) (any, error) {
	params, ok := body.(TranslateBrowsePathsParams)
	if !ok {
		return nil, fmt.Errorf("server: handleTranslateBrowsePaths: %w", ErrUnsupportedMessageType)
	}
	return view.TranslateBrowsePathsToNodeIds(s.addressSpace, params.BrowsePaths), nil
}

// CreateSessionParams is handleCreateSession's expected body.
type CreateSessionParams struct {
	EndpointURL string
}

func (s *Server) handleCreateSession(_ *session.Session, body any) (any, error) {
	params, ok := body.(CreateSessionParams)
	if !ok {
		return nil, fmt.Errorf("server: handleCreateSession: %w", ErrUnsupportedMessageType)
	}

	sess, err := s.sessions.CreateSession(params.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("server: create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionCreated()
	}

	return sess, nil
}

func (s *Server) handleCloseSession(sess *session.Session, _ any) (any, error) {
	if sess == nil {
		return nil, fmt.Errorf("server: close session: %w", session.ErrSessionNotFound)
	}

	if err := s.sessions.CloseSession(sess.SessionID()); err != nil {
		return nil, fmt.Errorf("server: close session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionClosed()
	}

	return nil, nil
}

// -------------------------------------------------------------------------
// TCP accept loop
// -------------------------------------------------------------------------

// ListenAndServe binds the configured listen address and accepts
// connections until ctx is cancelled or Close is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.listenAddr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "listening", slog.String("addr", s.listenAddr))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// Close closes the listener, causing ListenAndServe's accept loop to
// return.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	if err := s.listener.Close(); err != nil {
		return fmt.Errorf("server: close listener: %w", err)
	}
	return nil
}

// -------------------------------------------------------------------------
// Per-connection lifecycle
// -------------------------------------------------------------------------

// handleConnection drives one client connection through the Hello/
// Acknowledge exchange, OpenSecureChannel/Renew/Close, and message
// chunk reassembly, recovering from panics the way the teacher's
// RecoveryInterceptor recovers a ConnectRPC handler.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With(slog.String("remote", conn.RemoteAddr().String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered in connection handler", slog.Any("panic", r))
		}
	}()

	sch := channel.NewSecureChannel(s.policy, s.channelIDs, s.tokenIDs)
	reader := transport.NewBufferedReader(conn)

	for {
		if ctx.Err() != nil {
			return
		}

		c, err := transport.ReadChunk(reader, s.limits)
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncDecodeErrors()
			}
			logger.Debug("read chunk failed, closing connection", slog.Any("err", err))
			return
		}

		switch c.MessageType {
		case transport.MessageTypeHello:
			transport.ReleaseChunk(c)
			if err := s.sendAcknowledge(conn); err != nil {
				logger.Warn("send acknowledge failed", slog.Any("err", err))
				return
			}

		case transport.MessageTypeOpenChannel:
			err := s.handleOpen(sch, c)
			transport.ReleaseChunk(c)
			if err != nil {
				logger.Warn("open secure channel failed", slog.Any("err", err))
				return
			}
			if s.metrics != nil {
				s.metrics.ChannelOpened()
			}

		case transport.MessageTypeMessage:
			body, complete, err := sch.Feed(c.SequenceNumber, c.RequestID, channel.ChunkState(c.ChunkType), c.Body)
			transport.ReleaseChunk(c)
			if err != nil {
				logger.Warn("chunk reassembly failed", slog.Any("err", err))
				return
			}
			if complete {
				logger.Debug("reassembled message", slog.Int("bytes", len(body)))
			}

		case transport.MessageTypeCloseChannel:
			transport.ReleaseChunk(c)
			sch.Close()
			if s.metrics != nil {
				s.metrics.ChannelClosed()
			}
			return

		default:
			transport.ReleaseChunk(c)
			logger.Debug("unsupported chunk message type", slog.String("type", c.MessageType))
			return
		}
	}
}

// sendAcknowledge writes a minimal ACK chunk in response to HEL.
func (s *Server) sendAcknowledge(conn net.Conn) error {
	body := make([]byte, 0, 20)
	body = appendUint32(body, uint32(s.limits.MaxMessageLength))
	body = appendUint32(body, uint32(s.limits.MaxMessageLength))
	body = appendUint32(body, uint32(s.limits.MaxMessageLength))
	body = appendUint32(body, uint32(s.limits.MaxMessageLength))
	body = appendUint32(body, uint32(s.limits.MaxMessageLength))

	return transport.WriteChunk(conn, transport.Chunk{
		MessageType: transport.MessageTypeAcknowledge,
		ChunkType:   transport.ChunkTypeFinal,
		Body:        body,
	})
}

// handleOpen derives a fresh server nonce and opens or renews sch
// depending on its current state.
func (s *Server) handleOpen(sch *channel.SecureChannel, c transport.Chunk) error {
	serverNonce := make([]byte, nonceLength)
	if _, err := rand.Read(serverNonce); err != nil {
		return fmt.Errorf("server: generate server nonce: %w", err)
	}

	clientNonce := c.Body
	const defaultRequestedLifetimeMs = 3_600_000

	if sch.State() == channel.StateClosed {
		_, err := sch.Open(clientNonce, serverNonce, defaultRequestedLifetimeMs)
		return err
	}

	_, err := sch.Renew(clientNonce, serverNonce, defaultRequestedLifetimeMs)
	return err
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
