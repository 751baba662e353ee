package tlshake

import (
	"github.com/quartzsec/tlshake/pkg/protocol"
)

// SecurityParameters is everything the record protocol needs to derive
// its keying material for one direction of traffic.
type SecurityParameters struct {
	Suite        CipherSuiteID
	MasterSecret []byte
	ClientRandom []byte
	ServerRandom []byte
	Epoch        uint16
}

// RecordProtocol is the engine's view of the record layer. The engine
// produces plaintext fragments and epoch switches, the record protocol
// owns framing, protection and delivery.
//
// Send is called with a marshaled fragment of the given content type.
// SetWriteSecurityParameters and SetReadSecurityParameters promote the
// respective direction to the new epoch. Connect is called once the
// handshake completes, Disconnect when the connected state is left.
type RecordProtocol interface {
	Send(contentType protocol.ContentType, data []byte) error
	SetWriteSecurityParameters(params SecurityParameters) error
	SetReadSecurityParameters(params SecurityParameters) error
	Connect()
	Disconnect()
}
