// Package tlshake implements the TLS 1.2 and DTLS 1.2 handshake
// protocols as a sans I/O state machine. The Engine consumes handshake
// and change cipher spec fragments handed to it by a record protocol,
// emits outbound fragments and epoch switches through the same
// interface, and performs no I/O, timing or locking of its own.
// Callers own the timer and must serialize all calls into one Engine.
package tlshake

import (
	"github.com/pion/logging"

	"github.com/quartzsec/tlshake/pkg/protocol"
	"github.com/quartzsec/tlshake/pkg/protocol/alert"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

// Engine drives one handshake. Create it with NewClient or NewServer,
// call InitiateHandshake once, then feed it traffic and timer events.
type Engine struct {
	cfg      *handshakeConfig
	rec      RecordProtocol
	isClient bool

	current handshakeState
	state   sessionState
	cache   handshakeCache
	flight  flight

	log logging.LeveledLogger
}

// NewClient creates an Engine that performs the client side of the
// handshake over the given record protocol.
func NewClient(recordProtocol RecordProtocol, config *Config) (*Engine, error) {
	return newEngine(recordProtocol, config, true)
}

// NewServer creates an Engine that performs the server side of the
// handshake over the given record protocol.
func NewServer(recordProtocol RecordProtocol, config *Config) (*Engine, error) {
	return newEngine(recordProtocol, config, false)
}

func newEngine(recordProtocol RecordProtocol, config *Config, isClient bool) (*Engine, error) {
	if recordProtocol == nil {
		return nil, errRecordProtocolMissing
	}
	cfg, err := resolveConfig(config, isClient)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		rec:      recordProtocol,
		isClient: isClient,
		current:  stateDisconnected,
		log:      cfg.log,
	}, nil
}

// Connected reports whether the handshake has completed and not been
// torn down since.
func (e *Engine) Connected() bool {
	switch e.current.(type) {
	case *clientConnectedState, *serverConnectedState:
		return true
	}

	return false
}

// InitiateHandshake starts a fresh handshake. Calling it in any state
// other than disconnected is a caller bug and panics.
func (e *Engine) InitiateHandshake(fc *FlowContext) {
	if _, ok := e.current.(*disconnectedState); !ok {
		panic("tlshake: InitiateHandshake called outside the disconnected state")
	}

	e.reset()
	if e.isClient {
		e.transition(fc, clientStateHello)
	} else {
		e.transition(fc, serverStateStart)
	}
}

// Disconnect tears the handshake down from whatever state it is in.
// The current state's exit hook runs, then the engine is disconnected
// and may be reused with InitiateHandshake.
func (e *Engine) Disconnect() {
	if _, ok := e.current.(*disconnectedState); ok {
		return
	}

	e.log.Tracef("[handshake:%s] %s -> %s (disconnect)", e.role(), e.current.name(), stateDisconnected.name())
	e.current.onExit(e)
	e.current = stateDisconnected
	e.reset()
}

// HandleHandshakeMessage feeds one reassembled handshake message to the
// current state. retransmit marks buf as a duplicate the record
// protocol already saw, the stored flight is resent verbatim and no
// other processing happens.
func (e *Engine) HandleHandshakeMessage(fc *FlowContext, buf []byte, retransmit bool) {
	if retransmit {
		e.resendFlight(fc)
		if !e.flight.empty() {
			e.flight.resentOnce = true
		}

		return
	}

	hdr := handshake.Header{Datagram: e.cfg.datagram}
	if err := hdr.Unmarshal(buf); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}
	body := buf[hdr.Size():]
	if uint32(len(body)) != hdr.Length {
		e.notify(fc, alert.Fatal, alert.DecodeError, errMessageLengthMismatch)

		return
	}

	e.log.Tracef("[handshake:%s] %s <- %s", e.role(), e.current.name(), hdr.Type)
	e.current.onMessage(e, fc, &inboundMessage{header: hdr, raw: buf, body: body})
}

// HandleChangeCipherSpec feeds a change cipher spec fragment to the
// current state.
func (e *Engine) HandleChangeCipherSpec(fc *FlowContext, buf []byte) {
	ccs := protocol.ChangeCipherSpec{}
	if err := ccs.Unmarshal(buf); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	e.current.onChangeCipherSpec(e, fc)
}

// HandleTimerEvent signals the current state that the caller's
// retransmission timer expired.
func (e *Engine) HandleTimerEvent(fc *FlowContext) {
	e.current.onTimerEvent(e, fc)
}

func (e *Engine) role() string {
	if e.isClient {
		return "client"
	}

	return "server"
}

func (e *Engine) reset() {
	e.state = sessionState{}
	e.cache.reset()
	e.flight.reset()
}

// transition leaves the current state and enters next. The exit hook
// always completes before the entry hook starts.
func (e *Engine) transition(fc *FlowContext, next handshakeState) {
	e.log.Tracef("[handshake:%s] %s -> %s", e.role(), e.current.name(), next.name())
	e.current.onExit(e)
	e.current = next
	next.onEnter(e, fc)
}

func (e *Engine) protocolVersion() protocol.Version {
	if e.cfg.datagram {
		return protocol.VersionDTLS1_2
	}

	return protocol.VersionTLS1_2
}

// sendHandshake marshals msg, records it in the transcript and the
// current flight, and hands it to the record protocol.
func (e *Engine) sendHandshake(fc *FlowContext, msg handshake.Message) bool {
	data, seq, ok := e.marshalHandshake(fc, msg)
	if !ok {
		return false
	}

	e.cache.push(data, seq, msg.Type(), true)
	e.flight.add(protocol.ContentTypeHandshake, data)

	return e.sendRecord(fc, protocol.ContentTypeHandshake, data)
}

// sendHandshakeOnce is sendHandshake without flight retention, for
// messages that must never be retransmitted.
func (e *Engine) sendHandshakeOnce(fc *FlowContext, msg handshake.Message) bool {
	data, _, ok := e.marshalHandshake(fc, msg)
	if !ok {
		return false
	}

	return e.sendRecord(fc, protocol.ContentTypeHandshake, data)
}

func (e *Engine) marshalHandshake(fc *FlowContext, msg handshake.Message) ([]byte, uint16, bool) {
	container := handshake.Handshake{
		Header: handshake.Header{
			Datagram:        e.cfg.datagram,
			MessageSequence: e.state.messageSequence,
		},
		Message: msg,
	}
	data, err := container.Marshal()
	if err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return nil, 0, false
	}
	seq := e.state.messageSequence
	e.state.messageSequence++

	return data, seq, true
}

func (e *Engine) sendChangeCipherSpec(fc *FlowContext) bool {
	ccs := protocol.ChangeCipherSpec{}
	data, err := ccs.Marshal()
	if err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return false
	}

	e.flight.add(protocol.ContentTypeChangeCipherSpec, data)

	return e.sendRecord(fc, protocol.ContentTypeChangeCipherSpec, data)
}

func (e *Engine) sendRecord(fc *FlowContext, contentType protocol.ContentType, data []byte) bool {
	if err := e.rec.Send(contentType, data); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return false
	}

	return true
}

// cacheInbound adds a received message to the transcript. States call
// it once the message has been accepted.
func (e *Engine) cacheInbound(msg *inboundMessage) {
	e.cache.push(msg.raw, msg.header.MessageSequence, msg.header.Type, false)
}

// notify sends an alert to the peer and records err as the outcome of
// the current call.
func (e *Engine) notify(fc *FlowContext, level alert.Level, desc alert.Description, err error) {
	a := alert.Alert{Level: level, Description: desc}
	if data, marshalErr := a.Marshal(); marshalErr == nil {
		_ = e.rec.Send(protocol.ContentTypeAlert, data)
	}
	e.log.Tracef("[handshake:%s] %s: sent %s (%v)", e.role(), e.current.name(), a.String(), err)
	fc.Fail(err)
}

func (e *Engine) unexpectedMessage(fc *FlowContext, typ handshake.Type) {
	e.log.Tracef("[handshake:%s] %s: unexpected %s", e.role(), e.current.name(), typ)
	e.notify(fc, alert.Fatal, alert.UnexpectedMessage, errUnexpectedMessage)
}

// resendFlight replays the stored flight byte for byte. Nothing is
// re-derived and no state changes.
func (e *Engine) resendFlight(fc *FlowContext) {
	for i := range e.flight.records {
		rec := &e.flight.records[i]
		if !e.sendRecord(fc, rec.contentType, rec.data) {
			return
		}
	}
}

// retransmitOnTimer implements the timer half of the retransmission
// scheme. Each resend consumes one unit of the budget, the first timer
// event after the budget is gone abandons the handshake with a
// handshake failure alert.
func (e *Engine) retransmitOnTimer(fc *FlowContext) {
	if e.flight.empty() {
		return
	}
	if e.flight.resentOnce {
		// a duplicate already triggered a resend within this period
		e.flight.resentOnce = false

		return
	}
	if e.flight.retransmits >= e.cfg.maximumRetransmits {
		e.notify(fc, alert.Fatal, alert.HandshakeFailure, errRetransmitBudgetExhausted)
		e.Disconnect()

		return
	}

	e.flight.retransmits++
	e.log.Tracef("[handshake:%s] %s: retransmit %d/%d", e.role(), e.current.name(), e.flight.retransmits, e.cfg.maximumRetransmits)
	e.resendFlight(fc)
}

// securityParameters captures everything the record protocol needs to
// key one direction at the given epoch.
func (e *Engine) securityParameters(epoch uint16) SecurityParameters {
	return SecurityParameters{
		Suite:        e.state.cipherSuite.id,
		MasterSecret: e.state.masterSecret,
		ClientRandom: e.state.clientRandom,
		ServerRandom: e.state.serverRandom,
		Epoch:        epoch,
	}
}
