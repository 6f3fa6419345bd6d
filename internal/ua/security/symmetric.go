package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrSymmetricVerifyFailed is returned by SymmetricVerify when the
// computed HMAC does not match the signature carried on the message.
var ErrSymmetricVerifyFailed = errors.New("opcua: symmetric signature verification failed")

// SymmetricSign computes the HMAC (SHA-1 or SHA-256 per p) of data using
// key, returning a 20- or 32-byte signature.
func SymmetricSign(p Policy, key, data []byte) ([]byte, error) {
	newHash, err := p.prfHash()
	if err != nil {
		return nil, fmt.Errorf("opcua: symmetric sign: %w", err)
	}
	mac := hmac.New(newHash, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// SymmetricVerify recomputes the HMAC of data with key and compares it
// against signature in constant time.
func SymmetricVerify(p Policy, key, data, signature []byte) error {
	want, err := SymmetricSign(p, key, data)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(want, signature) != 1 {
		return ErrSymmetricVerifyFailed
	}
	return nil
}

// ErrInvalidPadding is returned by SymmetricDecrypt when the trailing
// PKCS#7 padding on a decrypted block is malformed.
var ErrInvalidPadding = errors.New("opcua: invalid PKCS#7 padding")

// SymmetricEncrypt AES-CBC encrypts plaintext with key and iv, after
// applying PKCS#7 padding to a multiple of the AES block size (16 bytes),
// per spec §4.2's "AES-CBC with PKCS padding".
func SymmetricEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("opcua: symmetric encrypt: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// SymmetricDecrypt AES-CBC decrypts ciphertext with key and iv, then
// strips and validates the trailing PKCS#7 padding.
func SymmetricDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("opcua: symmetric decrypt: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("opcua: symmetric decrypt: ciphertext length %d not a multiple of block size: %w",
			len(ciphertext), ErrSecurityPolicyRejected)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, aes.BlockSize)
}

// pkcs7Pad appends PKCS#7 padding so the result is a multiple of
// blockSize: every padding byte holds the pad count, and at least one
// full block of padding is added when data is already aligned so the
// padding is always present and unambiguous to strip.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding added by pkcs7Pad.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-padLen], nil
}
