package session

import (
	"sync"
	"time"

	"github.com/industrial-go/opcua/internal/ua/types"
)

// Session is a single client session (spec §4.5): its identity, the
// opaque token the client must echo on every subsequent request, and
// the terminate flag that marks it for teardown after a protocol
// violation. It is guarded by its own mutex, consistent with the fixed
// ServerState-before-AddressSpace-before-Session locking order (spec
// §5).
type Session struct {
	mu sync.Mutex

	sessionID           types.NodeId
	authenticationToken types.NodeId
	endpointURL         string
	userIdentity        any
	terminate           bool
	createdAt           time.Time
	activated           bool
}

// NewSession constructs a Session in its pre-activation state. Nothing
// in this package checks activation: Dispatch runs handlers for a
// session whose token matches, whether or not Activate has been called.
func NewSession(sessionID, authenticationToken types.NodeId, endpointURL string) *Session {
	return &Session{
		sessionID:           sessionID,
		authenticationToken: authenticationToken,
		endpointURL:         endpointURL,
		createdAt:           time.Now(),
	}
}

// SessionID returns the session's identity NodeId.
func (s *Session) SessionID() types.NodeId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// AuthenticationToken returns the opaque token the client must echo on
// every subsequent request.
func (s *Session) AuthenticationToken() types.NodeId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticationToken
}

// MatchesToken reports whether token equals this session's
// authentication token (spec §4.5's dispatch validation contract).
func (s *Session) MatchesToken(token types.NodeId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticationToken.Equal(token)
}

// Activate marks the session active and records the client's identity
// token (spec: ActivateSessionRequest). Activated reports the result.
func (s *Session) Activate(userIdentity any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userIdentity = userIdentity
	s.activated = true
}

// Activated reports whether ActivateSession has completed for this
// session.
func (s *Session) Activated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activated
}

// MarkTerminate flags the session for teardown after the next dispatch
// (spec §4.5/§5: "a session marked terminate = true causes the next
// dispatch to close the channel").
func (s *Session) MarkTerminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminate = true
}

// ShouldTerminate reports whether the session has been flagged for
// teardown.
func (s *Session) ShouldTerminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminate
}

// EndpointURL returns the endpoint URL the session was created against.
func (s *Session) EndpointURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpointURL
}
