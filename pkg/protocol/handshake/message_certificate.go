package handshake

import (
	"github.com/quartzsec/tlshake/internal/util"
)

// MessageCertificate conveys the certificate chain to the peer, each
// entry is a raw ASN.1 DER certificate.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
type MessageCertificate struct {
	Certificate [][]byte
}

// Type returns the Handshake Type.
func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

const (
	handshakeMessageCertificateLengthFieldSize = 3
)

// Marshal encodes the Handshake. Every certificate entry must be
// non-empty and the encoded list must fit the uint24 length field.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	payloadSize := 0
	for _, r := range m.Certificate {
		if len(r) == 0 {
			return nil, errEmptyCertificate
		}
		payloadSize += handshakeMessageCertificateLengthFieldSize + len(r)
	}
	if payloadSize > MaxMessageLength {
		return nil, errCertificateTooLarge
	}

	out := make([]byte, handshakeMessageCertificateLengthFieldSize, handshakeMessageCertificateLengthFieldSize+payloadSize)
	util.PutBigEndianUint24(out, uint32(payloadSize)) //nolint:gosec // G115

	for _, r := range m.Certificate {
		lenField := make([]byte, handshakeMessageCertificateLengthFieldSize)
		util.PutBigEndianUint24(lenField, uint32(len(r))) //nolint:gosec // G115
		out = append(out, lenField...)
		out = append(out, r...)
	}

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificate) Unmarshal(data []byte) error {
	if len(data) < handshakeMessageCertificateLengthFieldSize {
		return errBufferTooSmall
	}

	certificateBodyLen := int(util.BigEndianUint24(data))
	if certificateBodyLen+handshakeMessageCertificateLengthFieldSize != len(data) {
		return errLengthMismatch
	}

	m.Certificate = nil
	offset := handshakeMessageCertificateLengthFieldSize
	for offset < len(data) {
		if len(data) < offset+handshakeMessageCertificateLengthFieldSize {
			return errBufferTooSmall
		}
		certificateLen := int(util.BigEndianUint24(data[offset:]))
		if certificateLen == 0 {
			return errEmptyCertificate
		}
		offset += handshakeMessageCertificateLengthFieldSize

		if len(data) < offset+certificateLen {
			return errBufferTooSmall
		}
		m.Certificate = append(m.Certificate, append([]byte{}, data[offset:offset+certificateLen]...))
		offset += certificateLen
	}

	return nil
}
