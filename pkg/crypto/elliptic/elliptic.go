// Package elliptic provides the elliptic curve key exchange used by the
// certificate based cipher suites
package elliptic

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"
)

var errInvalidNamedCurve = errors.New("invalid named curve")

// CurveType is the registered ECCurveType value carried in a
// ServerKeyExchange
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-10
type CurveType byte

// CurveType enums.
const (
	CurveTypeNamedCurve CurveType = 0x03
)

// CurveTypes returns all registered curve types.
func CurveTypes() map[CurveType]struct{} {
	return map[CurveType]struct{}{
		CurveTypeNamedCurve: {},
	}
}

// Curve is the registered NamedCurve value
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xml#tls-parameters-8
type Curve uint16

// Curve enums.
const (
	P256   Curve = 0x0017
	P384   Curve = 0x0018
	X25519 Curve = 0x001d
)

// Curves returns all curves we implement.
func Curves() map[Curve]struct{} {
	return map[Curve]struct{}{
		P256:   {},
		P384:   {},
		X25519: {},
	}
}

// Keypair is a Curve with a Private/Public Keypair.
type Keypair struct {
	Curve      Curve
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeypair generates a random ephemeral Keypair on the given curve.
func GenerateKeypair(c Curve) (*Keypair, error) {
	switch c {
	case X25519:
		tmp := make([]byte, curve25519.ScalarSize)
		if _, err := rand.Read(tmp); err != nil {
			return nil, err
		}

		public, err := curve25519.X25519(tmp, curve25519.Basepoint)
		if err != nil {
			return nil, err
		}

		return &Keypair{Curve: X25519, PublicKey: public, PrivateKey: tmp}, nil
	case P256:
		return ecdhKeypair(ecdh.P256(), P256)
	case P384:
		return ecdhKeypair(ecdh.P384(), P384)
	default:
		return nil, errInvalidNamedCurve
	}
}

// SharedSecret computes the ECDH shared secret between the local
// keypair and the peer's public key.
func SharedSecret(peerPublicKey []byte, kp *Keypair) ([]byte, error) {
	switch kp.Curve {
	case X25519:
		return curve25519.X25519(kp.PrivateKey, peerPublicKey)
	case P256:
		return ecdhSharedSecret(ecdh.P256(), peerPublicKey, kp)
	case P384:
		return ecdhSharedSecret(ecdh.P384(), peerPublicKey, kp)
	default:
		return nil, errInvalidNamedCurve
	}
}

func ecdhKeypair(c ecdh.Curve, id Curve) (*Keypair, error) {
	privateKey, err := c.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &Keypair{
		Curve:      id,
		PublicKey:  privateKey.PublicKey().Bytes(),
		PrivateKey: privateKey.Bytes(),
	}, nil
}

func ecdhSharedSecret(c ecdh.Curve, peerPublicKey []byte, kp *Keypair) ([]byte, error) {
	privateKey, err := c.NewPrivateKey(kp.PrivateKey)
	if err != nil {
		return nil, err
	}
	publicKey, err := c.NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, err
	}

	return privateKey.ECDH(publicKey)
}
