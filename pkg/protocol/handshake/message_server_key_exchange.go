package handshake

import (
	"encoding/binary"

	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/crypto/hash"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
)

// MessageServerKeyExchange supplements the key exchange when the
// Certificate (if any) does not contain enough data for the premaster
// secret. It carries either an opaque PSK identity hint or signed
// ephemeral ECDH parameters, decided by the negotiated cipher suite.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.3
// https://tools.ietf.org/html/rfc4279#section-2
type MessageServerKeyExchange struct {
	IdentityHint []byte

	EllipticCurveType  elliptic.CurveType
	NamedCurve         elliptic.Curve
	PublicKey          []byte
	HashAlgorithm      hash.Algorithm
	SignatureAlgorithm signature.Algorithm
	Signature          []byte

	// KeyExchangeAlgorithm selects which form is on the wire, it must
	// be set from the negotiated cipher suite before unmarshaling.
	KeyExchangeAlgorithm KeyExchangeAlgorithm
}

// Type returns the Handshake Type.
func (m MessageServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

// Marshal encodes the Handshake.
func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	switch m.KeyExchangeAlgorithm {
	case KeyExchangeAlgorithmPSK:
		if len(m.IdentityHint) > 0xFFFF {
			return nil, errLengthMismatch
		}
		out := append([]byte{0x00, 0x00}, m.IdentityHint...)
		binary.BigEndian.PutUint16(out, uint16(len(m.IdentityHint))) //nolint:gosec // G115

		return out, nil
	case KeyExchangeAlgorithmECDHE:
		if len(m.PublicKey) == 0 || len(m.PublicKey) > 255 {
			return nil, errLengthMismatch
		}
		if len(m.Signature) == 0 || len(m.Signature) > 0xFFFF {
			return nil, errLengthMismatch
		}

		out := []byte{byte(m.EllipticCurveType), 0x00, 0x00}
		binary.BigEndian.PutUint16(out[1:], uint16(m.NamedCurve))
		out = append(out, byte(len(m.PublicKey)))
		out = append(out, m.PublicKey...)

		out = append(out, []byte{byte(m.HashAlgorithm), byte(m.SignatureAlgorithm), 0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.Signature))) //nolint:gosec // G115
		out = append(out, m.Signature...)

		return out, nil
	default:
		return nil, errInvalidClientKeyExchange
	}
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error {
	switch m.KeyExchangeAlgorithm {
	case KeyExchangeAlgorithmPSK:
		return m.unmarshalPSK(data)
	case KeyExchangeAlgorithmECDHE:
		return m.unmarshalECDHE(data)
	default:
		return errInvalidClientKeyExchange
	}
}

func (m *MessageServerKeyExchange) unmarshalPSK(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	hintLength := int(binary.BigEndian.Uint16(data))
	if hintLength+2 != len(data) {
		return errLengthMismatch
	}
	m.IdentityHint = append([]byte(nil), data[2:]...)

	return nil
}

func (m *MessageServerKeyExchange) unmarshalECDHE(data []byte) error { //nolint:cyclop
	if len(data) < 4 {
		return errBufferTooSmall
	}

	m.EllipticCurveType = elliptic.CurveType(data[0])
	if _, ok := elliptic.CurveTypes()[m.EllipticCurveType]; !ok {
		return errInvalidEllipticCurveType
	}

	m.NamedCurve = elliptic.Curve(binary.BigEndian.Uint16(data[1:]))
	if _, ok := elliptic.Curves()[m.NamedCurve]; !ok {
		return errInvalidNamedCurve
	}

	publicKeyLength := int(data[3])
	offset := 4
	if publicKeyLength == 0 || len(data) < offset+publicKeyLength {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, data[offset:offset+publicKeyLength]...)
	offset += publicKeyLength

	if len(data) < offset+4 {
		return errBufferTooSmall
	}

	m.HashAlgorithm = hash.Algorithm(data[offset])
	if _, ok := hash.Algorithms()[m.HashAlgorithm]; !ok {
		return errInvalidHashAlgorithm
	}
	m.SignatureAlgorithm = signature.Algorithm(data[offset+1])
	if _, ok := signature.Algorithms()[m.SignatureAlgorithm]; !ok {
		return errInvalidSignatureAlgorithm
	}
	offset += 2

	signatureLength := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if signatureLength == 0 || len(data) != offset+signatureLength {
		return errLengthMismatch
	}
	m.Signature = append([]byte{}, data[offset:]...)

	return nil
}
