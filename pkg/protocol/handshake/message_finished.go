package handshake

// MessageFinished is the first protected message, its verify data is a
// PRF output over the handshake transcript and proves both sides saw
// the same messages.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.9
type MessageFinished struct {
	VerifyData []byte
}

// Type returns the Handshake Type.
func (m MessageFinished) Type() Type {
	return TypeFinished
}

// Marshal encodes the Handshake.
func (m *MessageFinished) Marshal() ([]byte, error) {
	if len(m.VerifyData) == 0 {
		return nil, errVerifyDataLength
	}

	return append([]byte{}, m.VerifyData...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageFinished) Unmarshal(data []byte) error {
	if len(data) == 0 {
		return errVerifyDataLength
	}
	m.VerifyData = append([]byte{}, data...)

	return nil
}
