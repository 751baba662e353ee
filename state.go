package tlshake

import (
	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
	"github.com/quartzsec/tlshake/pkg/protocol/alert"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

// inboundMessage is a parsed handshake header together with the raw
// bytes it arrived in. States unmarshal the body themselves against the
// type they expect.
type inboundMessage struct {
	header handshake.Header
	raw    []byte
	body   []byte
}

// handshakeState is one stage of the handshake. Exactly one state is
// current at a time and the engine guarantees onExit of the old state
// runs before onEnter of the new one. State values carry no data, all
// per connection bookkeeping lives on the Engine.
type handshakeState interface {
	name() string
	onEnter(e *Engine, fc *FlowContext)
	onExit(e *Engine)
	onMessage(e *Engine, fc *FlowContext, msg *inboundMessage)
	onChangeCipherSpec(e *Engine, fc *FlowContext)
	onTimerEvent(e *Engine, fc *FlowContext)
}

// baseState supplies the default reactions: entry and exit do nothing,
// anything received is unexpected, timer expiry retransmits the
// current flight.
type baseState struct{}

func (baseState) onEnter(*Engine, *FlowContext) {}

func (baseState) onExit(*Engine) {}

func (baseState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	e.unexpectedMessage(fc, msg.header.Type)
}

func (baseState) onChangeCipherSpec(e *Engine, fc *FlowContext) {
	e.notify(fc, alert.Fatal, alert.UnexpectedMessage, errUnexpectedChangeCipherSpec)
}

func (baseState) onTimerEvent(e *Engine, fc *FlowContext) {
	e.retransmitOnTimer(fc)
}

// disconnectedState is shared by both roles. No traffic is valid here
// and there is no flight to retransmit.
type disconnectedState struct {
	baseState
}

func (disconnectedState) name() string { return "Disconnected" }

func (disconnectedState) onMessage(e *Engine, fc *FlowContext, _ *inboundMessage) {
	fc.Fail(errEngineClosed)
}

func (disconnectedState) onChangeCipherSpec(_ *Engine, fc *FlowContext) {
	fc.Fail(errEngineClosed)
}

func (disconnectedState) onTimerEvent(*Engine, *FlowContext) {}

//nolint:gochecknoglobals
var stateDisconnected = &disconnectedState{}

// sessionState is the mutable bookkeeping built up over one handshake.
type sessionState struct {
	localRandom    handshake.Random
	localRandomSet bool

	// clientRandom and serverRandom are the marshaled 32 byte forms
	// used for key derivation and key exchange signatures.
	clientRandom []byte
	serverRandom []byte

	cipherSuite *cipherSuite
	sessionID   []byte
	cookie      []byte

	// messageSequence is the next outbound handshake message_seq.
	messageSequence uint16

	localKeypair    *elliptic.Keypair
	remoteCurve     elliptic.Curve
	remotePublicKey []byte
	identityHint    []byte

	preMasterSecret []byte
	masterSecret    []byte

	remoteCertificate [][]byte

	remoteRequestedCertificate bool
	remoteCertificateRequest   *handshake.MessageCertificateRequest
	localCertificateSent       bool
	localSignatureScheme       signaturehash.Algorithm

	serverKeyExchangeReceived bool
	clientKeyExchangeReceived bool
	clientCertificateReceived bool
	clientCertificateVerified bool
}
