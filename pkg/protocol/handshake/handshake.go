// Package handshake provides the TLS 1.2 and DTLS 1.2 handshake message
// wire formats
//
// https://tools.ietf.org/html/rfc5246#section-7.4
// https://tools.ietf.org/html/rfc6347#section-4.2
package handshake

import (
	"github.com/quartzsec/tlshake/pkg/protocol"
)

// Type is the unique identifier for each handshake message
// https://tools.ietf.org/html/rfc5246#section-7.4
type Type uint8

// Type enums.
const (
	TypeHelloRequest       Type = 0
	TypeClientHello        Type = 1
	TypeServerHello        Type = 2
	TypeHelloVerifyRequest Type = 3
	TypeCertificate        Type = 11
	TypeServerKeyExchange  Type = 12
	TypeCertificateRequest Type = 13
	TypeServerHelloDone    Type = 14
	TypeCertificateVerify  Type = 15
	TypeClientKeyExchange  Type = 16
	TypeFinished           Type = 20
)

// String returns the string representation of this type.
func (t Type) String() string {
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateRequest:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return "Unknown Handshake Type"
	}
}

// IncludedInTranscript reports whether messages of this type enter the
// transcript hashed for CertificateVerify and Finished. HelloRequest
// and HelloVerifyRequest never do.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.6
func (t Type) IncludedInTranscript() bool {
	switch t {
	case TypeHelloRequest, TypeHelloVerifyRequest:
		return false
	default:
		return true
	}
}

// KeyExchangeAlgorithm controls which key exchange form the
// ServerKeyExchange and ClientKeyExchange messages carry on the wire.
// The negotiated cipher suite decides it, so it must be set before
// those messages are unmarshaled.
type KeyExchangeAlgorithm int

// KeyExchangeAlgorithm enums.
const (
	KeyExchangeAlgorithmNone  KeyExchangeAlgorithm = 0
	KeyExchangeAlgorithmPSK   KeyExchangeAlgorithm = 1
	KeyExchangeAlgorithmECDHE KeyExchangeAlgorithm = 2
)

// Message is the content of a handshake record.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error

	Type() Type
}

// Handshake protocol is responsible for selecting a cipher spec and
// generating a master secret, which together comprise the primary
// cryptographic parameters associated with a secure session. It can
// also optionally authenticate parties who have certificates signed by
// a trusted certificate authority.
//
// https://tools.ietf.org/html/rfc5246#section-7.3
type Handshake struct {
	Header  Header
	Message Message

	// KeyExchangeAlgorithm is consulted when unmarshaling a
	// ServerKeyExchange or ClientKeyExchange body.
	KeyExchangeAlgorithm KeyExchangeAlgorithm
}

// ContentType returns the ContentType of this content.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the header and message to binary. The header length
// fields are filled from the marshaled message.
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Message == nil {
		return nil, errHandshakeMessageUnset
	} else if h.Header.FragmentOffset != 0 {
		return nil, errUnableToMarshalFragmented
	}

	msg, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(msg)) //nolint:gosec // G115
	h.Header.FragmentLength = h.Header.Length
	header, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(header, msg...), nil
}

// Unmarshal populates the header and message from binary. The declared
// header length must match the remaining buffer exactly, a message is
// never parsed past it.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}

	reportedLen := int(h.Header.Length)
	body := data[h.Header.Size():]
	if reportedLen != len(body) {
		return errLengthMismatch
	}

	msg, err := newMessage(h.Header.Type, h.Header.Datagram, h.KeyExchangeAlgorithm)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	h.Message = msg

	return nil
}

func newMessage(t Type, datagram bool, kx KeyExchangeAlgorithm) (Message, error) {
	switch t {
	case TypeHelloRequest:
		return &MessageHelloRequest{}, nil
	case TypeClientHello:
		return &MessageClientHello{Datagram: datagram}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeHelloVerifyRequest:
		return &MessageHelloVerifyRequest{}, nil
	case TypeCertificate:
		return &MessageCertificate{}, nil
	case TypeServerKeyExchange:
		return &MessageServerKeyExchange{KeyExchangeAlgorithm: kx}, nil
	case TypeCertificateRequest:
		return &MessageCertificateRequest{}, nil
	case TypeServerHelloDone:
		return &MessageServerHelloDone{}, nil
	case TypeCertificateVerify:
		return &MessageCertificateVerify{}, nil
	case TypeClientKeyExchange:
		return &MessageClientKeyExchange{KeyExchangeAlgorithm: kx}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errNotImplemented
	}
}
