package handshake

import (
	"encoding/binary"

	"github.com/quartzsec/tlshake/pkg/protocol"
)

// MessageClientHello is for when a client first connects to a server it
// is required to send the ClientHello as its first message. The client
// can also send a ClientHello in response to a HelloRequest or on its
// own initiative in order to renegotiate the security parameters in an
// existing connection.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	// Cookie is only present with DTLS framing.
	Cookie []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []byte

	// Extensions carries the raw extensions block, it is treated as
	// opaque by the handshake layer.
	Extensions []byte

	// Datagram selects DTLS framing for the cookie field.
	Datagram bool
}

const handshakeMessageClientHelloVariableWidthStart = 2 + RandomLength

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake.
func (m *MessageClientHello) Marshal() ([]byte, error) { //nolint:cyclop
	if len(m.SessionID) > 32 {
		return nil, errSessionIDTooLong
	}
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}
	if len(m.CipherSuiteIDs) == 0 {
		return nil, errCipherSuiteListInvalid
	}
	if len(m.CompressionMethods) == 0 {
		return nil, errInvalidCompressionMethod
	}

	out := make([]byte, handshakeMessageClientHelloVariableWidthStart)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	copy(out[2:], rand[:])

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	if m.Datagram {
		out = append(out, byte(len(m.Cookie)))
		out = append(out, m.Cookie...)
	}

	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.CipherSuiteIDs)*2)) //nolint:gosec // G115
	for _, id := range m.CipherSuiteIDs {
		out = append(out, []byte{0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], id)
	}

	out = append(out, byte(len(m.CompressionMethods)))
	out = append(out, m.CompressionMethods...)

	if len(m.Extensions) > 0 {
		out = append(out, []byte{0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.Extensions))) //nolint:gosec // G115
		out = append(out, m.Extensions...)
	}

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHello) Unmarshal(data []byte) error { //nolint:cyclop,gocognit
	if len(data) < handshakeMessageClientHelloVariableWidthStart {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	currOffset := handshakeMessageClientHelloVariableWidthStart

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

	if m.Datagram {
		if len(data) <= currOffset {
			return errBufferTooSmall
		}
		cookieLen := int(data[currOffset])
		currOffset++
		if len(data) < currOffset+cookieLen {
			return errBufferTooSmall
		}
		m.Cookie = append([]byte(nil), data[currOffset:currOffset+cookieLen]...)
		currOffset += cookieLen
	}

	if len(data) < currOffset+2 {
		return errBufferTooSmall
	}
	cipherSuitesLen := int(binary.BigEndian.Uint16(data[currOffset:]))
	currOffset += 2
	if cipherSuitesLen == 0 || cipherSuitesLen%2 != 0 {
		return errCipherSuiteListInvalid
	}
	if len(data) < currOffset+cipherSuitesLen {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = make([]uint16, 0, cipherSuitesLen/2)
	for i := 0; i < cipherSuitesLen; i += 2 {
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, binary.BigEndian.Uint16(data[currOffset+i:]))
	}
	currOffset += cipherSuitesLen

	if len(data) <= currOffset {
		return errBufferTooSmall
	}
	compressionMethodsLen := int(data[currOffset])
	currOffset++
	if compressionMethodsLen == 0 {
		return errInvalidCompressionMethod
	}
	if len(data) < currOffset+compressionMethodsLen {
		return errBufferTooSmall
	}
	m.CompressionMethods = append([]byte{}, data[currOffset:currOffset+compressionMethodsLen]...)
	currOffset += compressionMethodsLen

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
