package handshake

import (
	"encoding/binary"
)

// MessageClientKeyExchange sets the premaster secret, either by direct
// transmission of the PSK identity or by the transmission of the
// client's ephemeral ECDH public value.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7
// https://tools.ietf.org/html/rfc4279#section-2
type MessageClientKeyExchange struct {
	Identity  []byte
	PublicKey []byte

	// KeyExchangeAlgorithm selects which form is on the wire, it must
	// be set from the negotiated cipher suite before unmarshaling.
	KeyExchangeAlgorithm KeyExchangeAlgorithm
}

// Type returns the Handshake Type.
func (m MessageClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the Handshake.
func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	switch m.KeyExchangeAlgorithm {
	case KeyExchangeAlgorithmPSK:
		if len(m.Identity) > 0xFFFF {
			return nil, errLengthMismatch
		}
		out := append([]byte{0x00, 0x00}, m.Identity...)
		binary.BigEndian.PutUint16(out, uint16(len(m.Identity))) //nolint:gosec // G115

		return out, nil
	case KeyExchangeAlgorithmECDHE:
		if len(m.PublicKey) == 0 || len(m.PublicKey) > 255 {
			return nil, errLengthMismatch
		}

		return append([]byte{byte(len(m.PublicKey))}, m.PublicKey...), nil
	default:
		return nil, errInvalidClientKeyExchange
	}
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	switch m.KeyExchangeAlgorithm {
	case KeyExchangeAlgorithmPSK:
		if len(data) < 2 {
			return errBufferTooSmall
		}
		identityLength := int(binary.BigEndian.Uint16(data))
		if identityLength+2 != len(data) {
			return errLengthMismatch
		}
		m.Identity = append([]byte(nil), data[2:]...)

		return nil
	case KeyExchangeAlgorithmECDHE:
		if len(data) < 1 {
			return errBufferTooSmall
		}
		publicKeyLength := int(data[0])
		if publicKeyLength == 0 || publicKeyLength+1 != len(data) {
			return errLengthMismatch
		}
		m.PublicKey = append([]byte{}, data[1:]...)

		return nil
	default:
		return errInvalidClientKeyExchange
	}
}
