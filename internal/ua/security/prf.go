package security

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // SHA-1 required by Basic128Rsa15/Basic256 (OPC UA Part 7)
	"crypto/sha256"
	"fmt"
	"hash"
)

// ChannelKeys holds the signing key, encrypting key, and IV derived for
// one direction of a secure channel (OPC UA Part 7 §4.2, "SecureChannel
// key derivation").
type ChannelKeys struct {
	SigningKey    []byte
	EncryptingKey []byte
	IV            []byte
}

// PRF computes the P_SHA pseudo-random function (RFC 2246 §5, selecting
// SHA-1 or SHA-256 per p) over secret/seed, returning length bytes
// starting at offset. It fails with ErrSecurityPolicyRejected for
// PolicyNone and PolicyUnknown, which have no PRF.
func PRF(p Policy, secret, seed []byte, length, offset int) ([]byte, error) {
	newHash, err := p.prfHash()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, offset+length)
	a := hmacSum(newHash, secret, seed)
	for len(out) < offset+length {
		out = append(out, hmacSum(newHash, secret, append(append([]byte{}, a...), seed...))...)
		a = hmacSum(newHash, secret, a)
	}
	return out[offset : offset+length], nil
}

func (p Policy) prfHash() (func() hash.Hash, error) {
	switch p {
	case PolicyBasic128Rsa15, PolicyBasic256:
		return sha1.New, nil
	case PolicyBasic256Sha256:
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("opcua: prf for policy %s: %w", p, ErrSecurityPolicyRejected)
	}
}

func hmacSum(newHash func() hash.Hash, key, msg []byte) []byte {
	mac := hmac.New(newHash, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// DeriveChannelKeys derives the signing key, encrypting key and IV for
// one direction of a secure channel from a pair of nonces, following the
// table in OPC UA Part 7 §4.2: signing key = PRF(nonce1, nonce2,
// signingKeyLen, 0), encrypting key = PRF(..., encKeyLen, signingKeyLen),
// IV = PRF(..., blockSize, signingKeyLen+encKeyLen).
func DeriveChannelKeys(p Policy, nonce1, nonce2 []byte) (ChannelKeys, error) {
	signingKeyLen := p.derivedSignatureKeyLength()
	encKeyLen, blockSize := p.symmetricEncryptionKeyLength()
	if signingKeyLen == 0 || encKeyLen == 0 {
		return ChannelKeys{}, fmt.Errorf("opcua: derive channel keys for policy %s: %w", p, ErrSecurityPolicyRejected)
	}

	signingKey, err := PRF(p, nonce1, nonce2, signingKeyLen, 0)
	if err != nil {
		return ChannelKeys{}, err
	}
	encryptingKey, err := PRF(p, nonce1, nonce2, encKeyLen, signingKeyLen)
	if err != nil {
		return ChannelKeys{}, err
	}
	iv, err := PRF(p, nonce1, nonce2, blockSize, signingKeyLen+encKeyLen)
	if err != nil {
		return ChannelKeys{}, err
	}

	return ChannelKeys{SigningKey: signingKey, EncryptingKey: encryptingKey, IV: iv}, nil
}
