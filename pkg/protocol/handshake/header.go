package handshake

import (
	"encoding/binary"

	"github.com/quartzsec/tlshake/internal/util"
)

// Header sizes for the two framings.
//
// TLS frames a handshake message as type + uint24 length, DTLS extends
// that with a message sequence and uint24 fragment offset/length.
//
// https://tools.ietf.org/html/rfc5246#section-7.4
// https://tools.ietf.org/html/rfc6347#section-4.2.2
const (
	HeaderLengthTLS  = 4
	HeaderLengthDTLS = 12

	// MaxMessageLength is the largest representable message body.
	MaxMessageLength = 0xFFFFFF
)

// Header is the static first part of each handshake message.
type Header struct {
	Type            Type
	Length          uint32 // uint24
	MessageSequence uint16 // DTLS only
	FragmentOffset  uint32 // uint24, DTLS only
	FragmentLength  uint32 // uint24, DTLS only

	// Datagram selects DTLS framing. The sequence and fragment fields
	// are meaningless without it.
	Datagram bool
}

// Size returns the encoded size of this header.
func (h *Header) Size() int {
	if h.Datagram {
		return HeaderLengthDTLS
	}

	return HeaderLengthTLS
}

// Marshal encodes the header to binary.
func (h *Header) Marshal() ([]byte, error) {
	if h.Length > MaxMessageLength || h.FragmentLength > MaxMessageLength {
		return nil, errLengthMismatch
	}

	out := make([]byte, h.Size())
	out[0] = byte(h.Type)
	util.PutBigEndianUint24(out[1:], h.Length)
	if h.Datagram {
		binary.BigEndian.PutUint16(out[4:], h.MessageSequence)
		util.PutBigEndianUint24(out[6:], h.FragmentOffset)
		util.PutBigEndianUint24(out[9:], h.FragmentLength)
	}

	return out, nil
}

// Unmarshal populates the header from binary. A DTLS header whose
// fragment does not span the whole message is rejected, reassembly
// belongs to the transport.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < h.Size() {
		return errBufferTooSmall
	}

	h.Type = Type(data[0])
	h.Length = util.BigEndianUint24(data[1:])
	if !h.Datagram {
		return nil
	}

	h.MessageSequence = binary.BigEndian.Uint16(data[4:])
	h.FragmentOffset = util.BigEndianUint24(data[6:])
	h.FragmentLength = util.BigEndianUint24(data[9:])
	if h.FragmentOffset != 0 || h.FragmentLength != h.Length {
		return errMessageFragmented
	}

	return nil
}
