// Package security implements the OPC UA Security Policy engine (OPC UA
// Part 7): policy resolution, P_SHA-based secure channel key derivation,
// and the asymmetric/symmetric sign, verify, encrypt and decrypt
// operations each policy defines.
//
// Every cryptographic operation is keyed off a Policy value rather than
// performed directly against raw algorithm identifiers, so a rejected or
// unrecognized policy fails with ErrSecurityPolicyRejected instead of
// panicking deep inside a crypto call.
package security
