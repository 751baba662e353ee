package handshake

import (
	"encoding/binary"

	"github.com/quartzsec/tlshake/pkg/protocol"
)

// MessageServerHello is sent in response to a ClientHello message when
// it was able to find an acceptable set of algorithms. If it cannot
// find such a match, it will respond with a handshake failure alert.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.3
type MessageServerHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteID     uint16
	CompressionMethod byte

	// Extensions carries the raw extensions block, it is treated as
	// opaque by the handshake layer.
	Extensions []byte
}

const handshakeMessageServerHelloVariableWidthStart = 2 + RandomLength

// Type returns the Handshake Type.
func (m MessageServerHello) Type() Type {
	return TypeServerHello
}

// Marshal encodes the Handshake.
func (m *MessageServerHello) Marshal() ([]byte, error) {
	if len(m.SessionID) > 32 {
		return nil, errSessionIDTooLong
	}

	out := make([]byte, handshakeMessageServerHelloVariableWidthStart)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	copy(out[2:], rand[:])

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], m.CipherSuiteID)

	out = append(out, m.CompressionMethod)

	if len(m.Extensions) > 0 {
		out = append(out, []byte{0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.Extensions))) //nolint:gosec // G115
		out = append(out, m.Extensions...)
	}

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerHello) Unmarshal(data []byte) error { //nolint:cyclop
	if len(data) < handshakeMessageServerHelloVariableWidthStart {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	currOffset := handshakeMessageServerHelloVariableWidthStart

	sessionIDLen := int(data[currOffset])
	currOffset++
	if sessionIDLen > 32 {
		return errSessionIDTooLong
	}
	if len(data) < currOffset+sessionIDLen {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte(nil), data[currOffset:currOffset+sessionIDLen]...)
	currOffset += sessionIDLen

	if len(data) < currOffset+3 {
		return errBufferTooSmall
	}
	m.CipherSuiteID = binary.BigEndian.Uint16(data[currOffset:])
	currOffset += 2

	m.CompressionMethod = data[currOffset]
	currOffset++

	m.Extensions = nil
	if currOffset == len(data) {
		return nil
	}
	if len(data) < currOffset+2 {
		return errBufferTooSmall
	}
	extensionsLen := int(binary.BigEndian.Uint16(data[currOffset:]))
	currOffset += 2
	if len(data) != currOffset+extensionsLen {
		return errLengthMismatch
	}
	m.Extensions = append([]byte(nil), data[currOffset:]...)

	return nil
}
