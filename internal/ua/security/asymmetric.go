package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // SHA-1 digest required by Basic128Rsa15/Basic256 (OPC UA Part 7)
	_ "crypto/sha256" // registers crypto.SHA256 for asymmetricDigest's Basic256Sha256 branch
	"errors"
	"fmt"
)

// ErrAsymmetricVerifyFailed is returned by AsymmetricVerify on a
// signature mismatch.
var ErrAsymmetricVerifyFailed = errors.New("opcua: asymmetric signature verification failed")

func (p Policy) asymmetricDigest() (crypto.Hash, error) {
	switch p {
	case PolicyBasic128Rsa15, PolicyBasic256:
		return crypto.SHA1, nil
	case PolicyBasic256Sha256:
		return crypto.SHA256, nil
	default:
		return 0, fmt.Errorf("opcua: asymmetric digest for policy %s: %w", p, ErrSecurityPolicyRejected)
	}
}

func digestOf(h crypto.Hash, data []byte) []byte {
	hasher := h.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// AsymmetricSign signs data with priv, using SHA-1 for
// Basic128Rsa15/Basic256 or SHA-256 for Basic256Sha256, both with PKCS#1
// v1.5 signature padding.
func AsymmetricSign(p Policy, priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	h, err := p.asymmetricDigest()
	if err != nil {
		return nil, fmt.Errorf("opcua: asymmetric sign: %w", err)
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, h, digestOf(h, data))
	if err != nil {
		return nil, fmt.Errorf("opcua: asymmetric sign: %w", err)
	}
	return sig, nil
}

// AsymmetricVerify verifies signature over data against pub.
func AsymmetricVerify(p Policy, pub *rsa.PublicKey, data, signature []byte) error {
	h, err := p.asymmetricDigest()
	if err != nil {
		return fmt.Errorf("opcua: asymmetric verify: %w", err)
	}
	if err := rsa.VerifyPKCS1v15(pub, h, digestOf(h, data), signature); err != nil {
		return fmt.Errorf("%w: %w", ErrAsymmetricVerifyFailed, err)
	}
	return nil
}

// paddingAndChunkSize returns the plaintext bytes carried per asymmetric
// chunk for an RSA key of the given bit size under policy p: PKCS#1 v1.5
// for Basic128Rsa15 (keySize-11), OAEP-SHA1 for Basic256/Basic256Sha256
// (keySize-42).
func (p Policy) paddingAndChunkSize(keySizeBytes int) (oaep bool, chunkSize int, err error) {
	switch p {
	case PolicyBasic128Rsa15:
		return false, keySizeBytes - 11, nil
	case PolicyBasic256, PolicyBasic256Sha256:
		return true, keySizeBytes - 42, nil
	default:
		return false, 0, fmt.Errorf("opcua: asymmetric padding for policy %s: %w", p, ErrSecurityPolicyRejected)
	}
}

// AsymmetricEncrypt encrypts plaintext in chunks sized to pub's modulus,
// concatenating one ciphertext block (keySizeBytes long) per chunk. The
// final plaintext chunk may be shorter than chunkSize.
func AsymmetricEncrypt(p Policy, pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	keySize := pub.Size()
	oaep, chunkSize, err := p.paddingAndChunkSize(keySize)
	if err != nil {
		return nil, fmt.Errorf("opcua: asymmetric encrypt: %w", err)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("opcua: asymmetric encrypt: key size %d too small for policy %s: %w",
			keySize, p, ErrSecurityPolicyRejected)
	}

	out := make([]byte, 0, ((len(plaintext)/chunkSize)+1)*keySize)
	for off := 0; off < len(plaintext); off += chunkSize {
		end := off + chunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		block, err := encryptChunk(oaep, pub, plaintext[off:end])
		if err != nil {
			return nil, fmt.Errorf("opcua: asymmetric encrypt chunk at offset %d: %w", off, err)
		}
		out = append(out, block...)
	}
	if len(plaintext) == 0 {
		return out, nil
	}
	return out, nil
}

func encryptChunk(oaep bool, pub *rsa.PublicKey, chunk []byte) ([]byte, error) {
	if oaep {
		return rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, chunk, nil) //nolint:gosec // OAEP-SHA1 is the OPC UA Part 7 Basic256 spec requirement
	}
	return rsa.EncryptPKCS1v15(rand.Reader, pub, chunk)
}

// AsymmetricDecrypt decrypts ciphertext, which must be a concatenation of
// priv.Size()-byte blocks, returning the reassembled plaintext.
func AsymmetricDecrypt(p Policy, priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	keySize := priv.Size()
	oaep, _, err := p.paddingAndChunkSize(keySize)
	if err != nil {
		return nil, fmt.Errorf("opcua: asymmetric decrypt: %w", err)
	}
	if len(ciphertext)%keySize != 0 {
		return nil, fmt.Errorf("opcua: asymmetric decrypt: ciphertext length %d not a multiple of key size %d: %w",
			len(ciphertext), keySize, ErrSecurityPolicyRejected)
	}

	out := make([]byte, 0, len(ciphertext))
	for off := 0; off < len(ciphertext); off += keySize {
		block, err := decryptChunk(oaep, priv, ciphertext[off:off+keySize])
		if err != nil {
			return nil, fmt.Errorf("opcua: asymmetric decrypt chunk at offset %d: %w", off, err)
		}
		out = append(out, block...)
	}
	return out, nil
}

func decryptChunk(oaep bool, priv *rsa.PrivateKey, chunk []byte) ([]byte, error) {
	if oaep {
		return rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, chunk, nil) //nolint:gosec // OAEP-SHA1 is the OPC UA Part 7 Basic256 spec requirement
	}
	return rsa.DecryptPKCS1v15(rand.Reader, priv, chunk)
}
