package channel

import (
	"fmt"
	"sync"
	"time"

	"github.com/industrial-go/opcua/internal/ua/security"
)

// SecureChannel ties the state machine, id allocation, token lifetime
// negotiation, and per-channel chunk reassembly into the single object a
// transport connection owns (spec §4.4). It is guarded by its own mutex,
// consistent with the fixed locking order in spec §5 (ServerState before
// AddressSpace before Session/Channel).
type SecureChannel struct {
	mu sync.Mutex

	policy security.Policy

	channelIDs *IDAllocator
	tokenIDs   *IDAllocator

	state State

	channelID uint32

	currentTokenID     uint32
	currentClientKeys  security.ChannelKeys
	currentServerKeys  security.ChannelKeys
	currentExpiresAt   time.Time

	previousTokenID     uint32
	previousClientKeys  security.ChannelKeys
	previousServerKeys  security.ChannelKeys
	havePreviousToken   bool
	overlapExpiresAt    time.Time

	reassembler *Reassembler
}

// NewSecureChannel returns a Closed SecureChannel that will negotiate
// policy on open. channelIDs/tokenIDs are typically shared across every
// channel a server holds so ids stay unique server-wide.
func NewSecureChannel(policy security.Policy, channelIDs, tokenIDs *IDAllocator) *SecureChannel {
	return &SecureChannel{
		policy:      policy,
		channelIDs:  channelIDs,
		tokenIDs:    tokenIDs,
		state:       StateClosed,
		reassembler: NewReassembler(),
	}
}

// State returns the channel's current lifecycle state.
func (c *SecureChannel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChannelID returns the allocated channel id, or 0 if never opened.
func (c *SecureChannel) ChannelID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// TokenID returns the active security token id.
func (c *SecureChannel) TokenID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTokenID
}

// Open processes a Closed + OpenSecureChannelRequest(non-renew)
// transition: derive keys from the exchanged nonces, assign a channel id
// and a token id, and negotiate the token lifetime.
//
// Verifying the client's asymmetric signature and decrypting its nonce
// (spec §4.4's ActionVerifyAndDeriveKeys, the asymmetric half) is the
// transport layer's responsibility using internal/ua/security's
// AsymmetricVerify/AsymmetricDecrypt before calling Open; by the time
// clientNonce/serverNonce reach here they are already plaintext.
func (c *SecureChannel) Open(clientNonce, serverNonce []byte, requestedLifetimeMs uint32) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := ApplyEvent(c.state, EventOpen)
	if !res.Changed {
		return res, fmt.Errorf("opcua: OpenSecureChannelRequest invalid in state %s", c.state)
	}

	if err := c.deriveAndIssue(clientNonce, serverNonce, requestedLifetimeMs); err != nil {
		return res, err
	}

	channelID, err := c.channelIDs.Allocate()
	if err != nil {
		return res, fmt.Errorf("allocate channel id: %w", err)
	}
	c.channelID = channelID
	c.state = res.NewState
	return res, nil
}

// Renew processes an Open + OpenSecureChannelRequest(Renew) transition:
// a fresh token is derived while the previous token remains valid for
// its overlap window (spec §4.4).
func (c *SecureChannel) Renew(clientNonce, serverNonce []byte, requestedLifetimeMs uint32) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := ApplyEvent(c.state, EventRenew)
	if !res.Changed {
		return res, fmt.Errorf("opcua: renew invalid in state %s", c.state)
	}

	c.previousTokenID = c.currentTokenID
	c.previousClientKeys = c.currentClientKeys
	c.previousServerKeys = c.currentServerKeys
	c.havePreviousToken = true

	if err := c.deriveAndIssue(clientNonce, serverNonce, requestedLifetimeMs); err != nil {
		return res, err
	}
	lifetime := c.currentExpiresAt.Sub(timeNow())
	c.overlapExpiresAt = timeNow().Add(OverlapWindow(lifetime))

	c.state = res.NewState
	return res, nil
}

// RetireOverlap processes a Renewing + EventOverlapExpired transition,
// dropping the pre-renewal token once its overlap window has passed.
// Callers schedule this against overlapExpiresAt (exposed via
// OverlapDeadline) rather than this package running its own timer.
func (c *SecureChannel) RetireOverlap() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := ApplyEvent(c.state, EventOverlapExpired)
	if res.Changed {
		c.tokenIDs.Release(c.previousTokenID)
		c.havePreviousToken = false
		c.state = res.NewState
	}
	return res
}

// OverlapDeadline reports when a renewed channel's retired token should
// be retired, and whether a renewal is in fact in progress.
func (c *SecureChannel) OverlapDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlapExpiresAt, c.havePreviousToken
}

// Close processes Open|Renewing + CloseSecureChannelRequest, releasing
// both ids and zeroing key material.
func (c *SecureChannel) Close() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked(EventClose)
}

// ExpireToken processes a token-expiry event (spec §4.4: "any state +
// token expiry -> Closed, with BadSecureChannelTokenUnknown on
// subsequent messages"). Callers invoke this when currentExpiresAt has
// passed.
func (c *SecureChannel) ExpireToken() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked(EventTokenExpired)
}

func (c *SecureChannel) closeLocked(event Event) Result {
	res := ApplyEvent(c.state, event)
	if res.Changed {
		c.channelIDs.Release(c.channelID)
		c.tokenIDs.Release(c.currentTokenID)
		if c.havePreviousToken {
			c.tokenIDs.Release(c.previousTokenID)
			c.havePreviousToken = false
		}
		c.currentClientKeys = security.ChannelKeys{}
		c.currentServerKeys = security.ChannelKeys{}
		c.previousClientKeys = security.ChannelKeys{}
		c.previousServerKeys = security.ChannelKeys{}
		c.state = res.NewState
	}
	return res
}

// deriveAndIssue derives both directions' key material (Part 7 §4.2,
// Table 33): ClientKeys secure Messages sent by the client (secret=
// ServerNonce, seed=ClientNonce), ServerKeys secure Messages sent by the
// server (secret=ClientNonce, seed=ServerNonce). The two are independent
// key sets, not a single shared one — they are derived with the nonces
// in swapped secret/seed order.
func (c *SecureChannel) deriveAndIssue(clientNonce, serverNonce []byte, requestedLifetimeMs uint32) error {
	clientKeys, err := security.DeriveChannelKeys(c.policy, serverNonce, clientNonce)
	if err != nil {
		return fmt.Errorf("derive client channel keys: %w", err)
	}
	serverKeys, err := security.DeriveChannelKeys(c.policy, clientNonce, serverNonce)
	if err != nil {
		return fmt.Errorf("derive server channel keys: %w", err)
	}
	tokenID, err := c.tokenIDs.Allocate()
	if err != nil {
		return fmt.Errorf("allocate token id: %w", err)
	}
	c.currentTokenID = tokenID
	c.currentClientKeys = clientKeys
	c.currentServerKeys = serverKeys
	lifetime := NegotiateTokenLifetime(requestedLifetimeMs)
	c.currentExpiresAt = timeNow().Add(lifetime)
	return nil
}

// TokenLifetimeRemaining reports how long the active token remains
// valid; a non-positive result means it has expired.
func (c *SecureChannel) TokenLifetimeRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentExpiresAt.Sub(timeNow())
}

// KeysForVerify returns the ClientKeys a given token id should be
// verified/decrypted against — the key set securing Messages sent by the
// client — checking the current key set, or — during the renewal overlap
// window — the previous key set if tokenID matches it. ok is false for an
// unrecognized token id.
func (c *SecureChannel) KeysForVerify(tokenID uint32) (keys security.ChannelKeys, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tokenID == c.currentTokenID {
		return c.currentClientKeys, true
	}
	if c.havePreviousToken && tokenID == c.previousTokenID {
		return c.previousClientKeys, true
	}
	return security.ChannelKeys{}, false
}

// KeysForSign returns the ServerKeys a given token id should be used to
// sign/encrypt outgoing Messages with — the key set securing Messages
// sent by the server — under the same current/overlap lookup as
// KeysForVerify. ok is false for an unrecognized token id.
func (c *SecureChannel) KeysForSign(tokenID uint32) (keys security.ChannelKeys, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tokenID == c.currentTokenID {
		return c.currentServerKeys, true
	}
	if c.havePreviousToken && tokenID == c.previousTokenID {
		return c.previousServerKeys, true
	}
	return security.ChannelKeys{}, false
}

// Feed reassembles one incoming chunk for this channel, enforcing the
// per-channel sequence-number invariant (spec §4.4). A sequence
// regression is fatal to the channel per spec §7, so the caller should
// treat a non-nil error here as a reason to Close.
func (c *SecureChannel) Feed(sequenceNumber, requestID uint32, state ChunkState, body []byte) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reassembler.Feed(sequenceNumber, requestID, state, body)
}

// timeNow is a seam so tests can avoid depending on wall-clock timing
// beyond comparing relative durations.
var timeNow = time.Now
