package handshake

import (
	"encoding/binary"

	"github.com/quartzsec/tlshake/pkg/crypto/clientcertificate"
	"github.com/quartzsec/tlshake/pkg/crypto/hash"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
)

// MessageCertificateRequest can be sent by a non-anonymous server to
// request a certificate from the client, if appropriate for the
// selected cipher suite.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type MessageCertificateRequest struct {
	CertificateTypes            []clientcertificate.Type
	SignatureHashAlgorithms     []signaturehash.Algorithm
	CertificateAuthoritiesNames [][]byte
}

const (
	messageCertificateRequestMinLength = 5
	messageCertificateRequestCASize    = 2
)

// Type returns the Handshake Type.
func (m MessageCertificateRequest) Type() Type {
	return TypeCertificateRequest
}

// Marshal encodes the Handshake.
func (m *MessageCertificateRequest) Marshal() ([]byte, error) { //nolint:cyclop
	if len(m.CertificateTypes) == 0 || len(m.CertificateTypes) > 255 {
		return nil, errCertificateTypesEmpty
	}
	if len(m.SignatureHashAlgorithms) == 0 || len(m.SignatureHashAlgorithms)*2 > 0xFFFE {
		return nil, errSignatureHashListInvalid
	}

	out := []byte{byte(len(m.CertificateTypes))}
	for _, v := range m.CertificateTypes {
		out = append(out, byte(v))
	}

	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.SignatureHashAlgorithms)*2)) //nolint:gosec // G115
	for _, v := range m.SignatureHashAlgorithms {
		out = append(out, byte(v.Hash))
		out = append(out, byte(v.Signature))
	}

	casLength := 0
	for _, ca := range m.CertificateAuthoritiesNames {
		if len(ca) == 0 || len(ca) > 0xFFFF {
			return nil, errCANameInvalid
		}
		casLength += messageCertificateRequestCASize + len(ca)
	}
	if casLength > 0xFFFF {
		return nil, errCANameInvalid
	}
	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(casLength)) //nolint:gosec // G115
	for _, ca := range m.CertificateAuthoritiesNames {
		out = append(out, []byte{0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(ca))) //nolint:gosec // G115
		out = append(out, ca...)
	}

	return out, nil
}

// Unmarshal populates the message from encoded data. The certificate
// type list must hold at least one registered value, the signature
// hash list at least one registered pair, unknown enumerants are
// rejected.
func (m *MessageCertificateRequest) Unmarshal(data []byte) error { //nolint:cyclop,gocognit
	if len(data) < messageCertificateRequestMinLength {
		return errBufferTooSmall
	}

	offset := 0
	certificateTypesLength := int(data[0])
	offset++
	if certificateTypesLength == 0 {
		return errCertificateTypesEmpty
	}
	if len(data) < offset+certificateTypesLength {
		return errBufferTooSmall
	}
	m.CertificateTypes = nil
	for i := 0; i < certificateTypesLength; i++ {
		certType := clientcertificate.Type(data[offset+i])
		if _, ok := clientcertificate.Types()[certType]; !ok {
			return errInvalidClientCertificateType
		}
		m.CertificateTypes = append(m.CertificateTypes, certType)
	}
	offset += certificateTypesLength

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	signatureHashAlgorithmsLength := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if signatureHashAlgorithmsLength == 0 || signatureHashAlgorithmsLength%2 != 0 {
		return errSignatureHashListInvalid
	}
	if len(data) < offset+signatureHashAlgorithmsLength {
		return errBufferTooSmall
	}
	m.SignatureHashAlgorithms = nil
	for i := 0; i < signatureHashAlgorithmsLength; i += 2 {
		h := hash.Algorithm(data[offset+i])
		if _, ok := hash.Algorithms()[h]; !ok {
			return errInvalidHashAlgorithm
		}
		s := signature.Algorithm(data[offset+i+1])
		if _, ok := signature.Algorithms()[s]; !ok {
			return errInvalidSignatureAlgorithm
		}
		m.SignatureHashAlgorithms = append(m.SignatureHashAlgorithms, signaturehash.Algorithm{Hash: h, Signature: s})
	}
	offset += signatureHashAlgorithmsLength

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	casLength := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) != offset+casLength {
		return errLengthMismatch
	}
	m.CertificateAuthoritiesNames = nil
	for casLength > 0 {
		if casLength < messageCertificateRequestCASize {
			return errBufferTooSmall
		}
		caLength := int(binary.BigEndian.Uint16(data[offset:]))
		offset += messageCertificateRequestCASize
		casLength -= messageCertificateRequestCASize
		if caLength == 0 || caLength > casLength {
			return errCANameInvalid
		}
		m.CertificateAuthoritiesNames = append(
			m.CertificateAuthoritiesNames, append([]byte{}, data[offset:offset+caLength]...))
		offset += caLength
		casLength -= caLength
	}

	return nil
}
