package handshake

// MessageHelloRequest is a notification that the client should begin
// the negotiation process anew. This implementation never sends it and
// rejects renegotiation when it arrives, the message only exists so it
// can be recognized.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.1
type MessageHelloRequest struct{}

// Type returns the Handshake Type.
func (m MessageHelloRequest) Type() Type {
	return TypeHelloRequest
}

// Marshal encodes the Handshake.
func (m *MessageHelloRequest) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageHelloRequest) Unmarshal(data []byte) error {
	if len(data) != 0 {
		return errLengthMismatch
	}

	return nil
}
