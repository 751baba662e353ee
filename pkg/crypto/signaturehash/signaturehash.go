// Package signaturehash provides the SignatureAndHashAlgorithm pairs
// exchanged during the handshake
// https://tools.ietf.org/html/rfc5246#section-7.4.1.4.1
package signaturehash

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"

	"github.com/quartzsec/tlshake/pkg/crypto/hash"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
)

var errNoAvailableSignatureSchemes = errors.New("connection can not be created, no signature scheme satisfies the private key")

// Algorithm is a pair of a hash and a signature algorithm.
type Algorithm struct {
	Hash      hash.Algorithm
	Signature signature.Algorithm
}

// Algorithms returns the pairs this implementation offers, in
// preference order.
func Algorithms() []Algorithm {
	return []Algorithm{
		{hash.SHA256, signature.ECDSA},
		{hash.SHA384, signature.ECDSA},
		{hash.SHA512, signature.ECDSA},
		{hash.SHA256, signature.RSA},
		{hash.SHA384, signature.RSA},
		{hash.SHA512, signature.RSA},
		{hash.Ed25519, signature.Ed25519},
	}
}

// IsValid reports whether both halves of the pair are registered
// values. Reserved enumerants fail deserialization.
func (a Algorithm) IsValid() bool {
	if _, ok := hash.Algorithms()[a.Hash]; !ok {
		return false
	}
	if _, ok := signature.Algorithms()[a.Signature]; !ok {
		return false
	}

	return true
}

// SelectSignatureScheme returns the first offered scheme usable with
// the given private key.
func SelectSignatureScheme(sigs []Algorithm, privateKey crypto.PrivateKey) (Algorithm, error) {
	for _, ss := range sigs {
		if ss.isCompatible(privateKey) {
			return ss, nil
		}
	}

	return Algorithm{}, errNoAvailableSignatureSchemes
}

// isCompatible checks that the scheme is compatible with the signing key.
func (a Algorithm) isCompatible(privateKey crypto.PrivateKey) bool {
	switch privateKey.(type) {
	case ed25519.PrivateKey:
		return a.Signature == signature.Ed25519
	case *ecdsa.PrivateKey:
		return a.Signature == signature.ECDSA
	case *rsa.PrivateKey:
		return a.Signature == signature.RSA
	default:
		return false
	}
}
