// Package channel implements the OPC UA secure channel state machine
// (spec §4.4): channel open/renew/close, token lifetime negotiation with
// overlap, and per-chunk sequence-number/request-id validation. Chunk
// cryptography (sign/encrypt, key derivation) lives in
// internal/ua/security; this package decides *when* keys are derived and
// *whether* an incoming chunk is acceptable, not how the bytes are
// transformed.
package channel
