// Package prf implements the TLS 1.2 pseudorandom function and the key
// derivations built on it
// https://tools.ietf.org/html/rfc5246#section-5
package prf

import (
	"crypto/hmac"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/protocol"
)

const (
	masterSecretLabel   = "master secret"
	clientFinishedLabel = "client finished"
	serverFinishedLabel = "server finished"

	// MasterSecretLength is the fixed length of a TLS 1.2 master secret.
	MasterSecretLength = 48

	// VerifyDataLength is the length of the Finished verify_data.
	VerifyDataLength = 12
)

// HashFunc allows callers to decide what hash is used in the PRF.
type HashFunc func() hash.Hash

// PSKPreMasterSecret builds the plain PSK premaster secret
// https://tools.ietf.org/html/rfc4279#section-2
func PSKPreMasterSecret(psk []byte) []byte {
	pskLen := len(psk)

	out := append(make([]byte, 2+pskLen+2), psk...)
	binary.BigEndian.PutUint16(out, uint16(pskLen))            //nolint:gosec // G115
	binary.BigEndian.PutUint16(out[2+pskLen:], uint16(pskLen)) //nolint:gosec // G115

	return out
}

// PreMasterSecret computes the ECDHE premaster secret from the peer's
// public value and our ephemeral keypair.
func PreMasterSecret(publicKey []byte, kp *elliptic.Keypair) ([]byte, error) {
	return elliptic.SharedSecret(publicKey, kp)
}

// PHash is the TLS data expansion function
// https://tools.ietf.org/html/rfc5246#section-5
func PHash(secret, seed []byte, requestedLength int, h HashFunc) ([]byte, error) {
	hmacSHA256 := func(key, data []byte) ([]byte, error) {
		mac := hmac.New(h, key)
		if _, err := mac.Write(data); err != nil {
			return nil, err
		}

		return mac.Sum(nil), nil
	}

	var err error
	lastRound := seed
	out := []byte{}

	iterations := (requestedLength + h().Size() - 1) / h().Size()
	for i := 0; i < iterations; i++ {
		lastRound, err = hmacSHA256(secret, lastRound)
		if err != nil {
			return nil, err
		}
		withSecret, err := hmacSHA256(secret, append(lastRound, seed...))
		if err != nil {
			return nil, err
		}

		out = append(out, withSecret...)
	}

	return out[:requestedLength], nil
}

// MasterSecret derives the 48 byte master secret from the premaster
// secret and both hello randoms.
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, h HashFunc) ([]byte, error) {
	seed := append(append([]byte(masterSecretLabel), clientRandom...), serverRandom...)

	return PHash(preMasterSecret, seed, MasterSecretLength, h)
}

// VerifyDataClient computes the client Finished verify_data over the
// handshake transcript.
func VerifyDataClient(masterSecret, handshakeBodies []byte, h HashFunc) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, clientFinishedLabel, h)
}

// VerifyDataServer computes the server Finished verify_data over the
// handshake transcript.
func VerifyDataServer(masterSecret, handshakeBodies []byte, h HashFunc) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, serverFinishedLabel, h)
}

func verifyData(masterSecret, handshakeBodies []byte, label string, h HashFunc) ([]byte, error) {
	transcript := h()
	if _, err := transcript.Write(handshakeBodies); err != nil {
		return nil, &protocol.InternalError{Err: fmt.Errorf("%w", err)}
	}

	seed := append([]byte(label), transcript.Sum(nil)...)

	return PHash(masterSecret, seed, VerifyDataLength, h)
}
