package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/industrial-go/opcua/internal/ua/channel"
	"github.com/industrial-go/opcua/internal/ua/types"
)

// sessionNamespace/tokenNamespace are the namespace indices session ids
// and authentication tokens are minted under, kept distinct from
// namespace 0 (the standard address-space namespace) and from each
// other so a session id can never be mistaken for a token.
const (
	sessionNamespace = 1
	tokenNamespace   = 2
)

// ErrSessionNotFound is returned by CloseSession for an unknown id.
var ErrSessionNotFound = errors.New("opcua: session not found")

// SessionManager creates, looks up, and closes sessions. Grounded on the
// BFD Manager's map-plus-mutex session registry, generalized from one
// lookup key (discriminator) to two (session id, authentication token)
// since a request names its session by token while CloseSession
// addresses sessions by session id.
type SessionManager struct {
	mu sync.Mutex

	sessionIDs *channel.IDAllocator
	tokenIDs   *channel.IDAllocator

	byID    map[string]*Session
	byToken map[string]*Session
}

// NewSessionManager returns an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessionIDs: channel.NewIDAllocator(),
		tokenIDs:   channel.NewIDAllocator(),
		byID:       make(map[string]*Session),
		byToken:    make(map[string]*Session),
	}
}

// CreateSession mints a fresh session id and authentication token and
// registers the session for lookup by both.
func (m *SessionManager) CreateSession(endpointURL string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sid, err := m.sessionIDs.Allocate()
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}
	tid, err := m.tokenIDs.Allocate()
	if err != nil {
		m.sessionIDs.Release(sid)
		return nil, fmt.Errorf("allocate authentication token: %w", err)
	}

	sessionID := types.NewNumericNodeId(sessionNamespace, sid)
	token := types.NewNumericNodeId(tokenNamespace, tid)
	s := NewSession(sessionID, token, endpointURL)

	m.byID[sessionID.String()] = s
	m.byToken[token.String()] = s
	return s, nil
}

// LookupBySessionID returns the session registered under id, if any.
func (m *SessionManager) LookupBySessionID(id types.NodeId) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id.String()]
	return s, ok
}

// LookupByToken returns the session whose authentication token is
// token. Dispatch does not call it: it receives the session and compares
// tokens with Session.MatchesToken.
func (m *SessionManager) LookupByToken(token types.NodeId) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token.String()]
	return s, ok
}

// CloseSession removes a session from both indices and releases its
// allocated ids.
func (m *SessionManager) CloseSession(id types.NodeId) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[id.String()]
	if !ok {
		return ErrSessionNotFound
	}
	delete(m.byID, id.String())
	delete(m.byToken, s.AuthenticationToken().String())
	m.sessionIDs.Release(id.Numeric)
	m.tokenIDs.Release(s.AuthenticationToken().Numeric)
	return nil
}

// Count returns the number of currently registered sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
