// Package hash provides the registered TLS HashAlgorithm values and
// their mapping onto crypto.Hash
package hash

import (
	"crypto"
)

// Algorithm is the registered HashAlgorithm value
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-18
type Algorithm uint8

// Algorithm enums.
const (
	None    Algorithm = 0
	MD5     Algorithm = 1
	SHA1    Algorithm = 2
	SHA224  Algorithm = 3
	SHA256  Algorithm = 4
	SHA384  Algorithm = 5
	SHA512  Algorithm = 6
	Ed25519 Algorithm = 8
)

// String makes hashAlgorithm printable.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case MD5:
		return "md5"
	case SHA1:
		return "sha-1"
	case SHA224:
		return "sha-224"
	case SHA256:
		return "sha-256"
	case SHA384:
		return "sha-384"
	case SHA512:
		return "sha-512"
	case Ed25519:
		return "null"
	default:
		return "unknown or unsupported hash algorithm"
	}
}

// CryptoHash returns the crypto.Hash implementation for the given Algorithm.
func (a Algorithm) CryptoHash() crypto.Hash {
	switch a {
	case None:
		return 0
	case MD5:
		return crypto.MD5
	case SHA1:
		return crypto.SHA1
	case SHA224:
		return crypto.SHA224
	case SHA256:
		return crypto.SHA256
	case SHA384:
		return crypto.SHA384
	case SHA512:
		return crypto.SHA512
	case Ed25519:
		return 0
	default:
		return 0
	}
}

// Digest returns the digest of b for the given Algorithm, or b itself
// for algorithms that sign the message directly.
func (a Algorithm) Digest(b []byte) []byte {
	if a == None || a == Ed25519 {
		return b
	}

	hash := a.CryptoHash().New()
	hash.Write(b)

	return hash.Sum(nil)
}

// Algorithms returns all registered Algorithms. Every value outside
// this set is reserved and rejected during deserialization.
func Algorithms() map[Algorithm]struct{} {
	return map[Algorithm]struct{}{
		None:    {},
		MD5:     {},
		SHA1:    {},
		SHA224:  {},
		SHA256:  {},
		SHA384:  {},
		SHA512:  {},
		Ed25519: {},
	}
}
