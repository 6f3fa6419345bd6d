package security

import "errors"

// Policy identifies a named OPC UA security policy (OPC UA Part 7). The
// zero value, PolicyUnknown, is a safe default: every crypto operation on
// it fails closed with ErrSecurityPolicyRejected rather than panicking.
type Policy uint8

const (
	PolicyUnknown Policy = iota
	PolicyNone
	PolicyBasic128Rsa15
	PolicyBasic256
	PolicyBasic256Sha256
)

// Security policy URIs, as they appear on the wire in endpoint
// descriptions and secure channel open requests.
const (
	URINone             = "http://opcfoundation.org/UA/SecurityPolicy#None"
	URIBasic128Rsa15     = "http://opcfoundation.org/UA/SecurityPolicy#Basic128Rsa15"
	URIBasic256          = "http://opcfoundation.org/UA/SecurityPolicy#Basic256"
	URIBasic256Sha256    = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
)

// Shorthand names accepted alongside full URIs, e.g. from configuration
// files where the full URI is needlessly verbose.
const (
	NameNone          = "None"
	NameBasic128Rsa15 = "Basic128Rsa15"
	NameBasic256      = "Basic256"
	NameBasic256Sha256 = "Basic256Sha256"
)

// ErrSecurityPolicyRejected is returned by every cryptographic operation
// on PolicyUnknown or, where the operation requires asymmetric/symmetric
// crypto, on PolicyNone. It replaces the "panic on invalid policy"
// behavior of the implementation this stack is modeled on.
var ErrSecurityPolicyRejected = errors.New("opcua: security policy rejected")

// FromURI resolves a security policy URI (or shorthand name) to a Policy.
// An unrecognized value resolves to PolicyUnknown rather than an error:
// callers that need a hard failure should check the result against
// PolicyUnknown themselves, or simply attempt a crypto operation and let
// it fail with ErrSecurityPolicyRejected.
func FromURI(uri string) Policy {
	switch uri {
	case URINone, NameNone:
		return PolicyNone
	case URIBasic128Rsa15, NameBasic128Rsa15:
		return PolicyBasic128Rsa15
	case URIBasic256, NameBasic256:
		return PolicyBasic256
	case URIBasic256Sha256, NameBasic256Sha256:
		return PolicyBasic256Sha256
	default:
		return PolicyUnknown
	}
}

// URI returns p's canonical security policy URI.
func (p Policy) URI() string {
	switch p {
	case PolicyNone:
		return URINone
	case PolicyBasic128Rsa15:
		return URIBasic128Rsa15
	case PolicyBasic256:
		return URIBasic256
	case PolicyBasic256Sha256:
		return URIBasic256Sha256
	default:
		return ""
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return NameNone
	case PolicyBasic128Rsa15:
		return NameBasic128Rsa15
	case PolicyBasic256:
		return NameBasic256
	case PolicyBasic256Sha256:
		return NameBasic256Sha256
	default:
		return "Unknown"
	}
}

// derivedSignatureKeyLength returns the HMAC key / signature length for p,
// in bytes: 20 (SHA-1) for Basic128Rsa15/Basic256, 32 (SHA-256) for
// Basic256Sha256.
func (p Policy) derivedSignatureKeyLength() int {
	switch p {
	case PolicyBasic256Sha256:
		return 32
	case PolicyBasic128Rsa15, PolicyBasic256:
		return 20
	default:
		return 0
	}
}

// symmetricEncryptionKeyLength returns the AES key length in bytes and
// block size for p's symmetric cipher: AES-128-CBC (16,16) for
// Basic128Rsa15, AES-256-CBC (32,16) for Basic256/Basic256Sha256.
func (p Policy) symmetricEncryptionKeyLength() (keyLen, blockSize int) {
	switch p {
	case PolicyBasic128Rsa15:
		return 16, 16
	case PolicyBasic256, PolicyBasic256Sha256:
		return 32, 16
	default:
		return 0, 0
	}
}

// usesSHA256 reports whether p's PRF and digests use SHA-256 (true) or
// SHA-1 (false).
func (p Policy) usesSHA256() bool {
	return p == PolicyBasic256Sha256
}

// MinAsymmetricKeyBits and MaxAsymmetricKeyBits bound the RSA key sizes a
// policy accepts (OPC UA Part 7).
func (p Policy) MinAsymmetricKeyBits() int {
	switch p {
	case PolicyBasic256Sha256:
		return 2048
	case PolicyBasic128Rsa15, PolicyBasic256:
		return 1024
	default:
		return 0
	}
}

func (p Policy) MaxAsymmetricKeyBits() int {
	switch p {
	case PolicyBasic256Sha256:
		return 4096
	case PolicyBasic128Rsa15, PolicyBasic256:
		return 2048
	default:
		return 0
	}
}
