package tlshake

import (
	"bytes"

	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
	"github.com/quartzsec/tlshake/pkg/protocol"
	"github.com/quartzsec/tlshake/pkg/protocol/alert"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

// Client side state singletons.
//
//nolint:gochecknoglobals
var (
	clientStateHello            = &clientHelloState{}
	clientStateServerHello      = &clientServerHelloState{}
	clientStateKeyExchange      = &clientKeyExchangeState{}
	clientStateHelloDone        = &clientHelloDoneState{}
	clientStateChangeCipherSpec = &clientChangeCipherSpecState{}
	clientStateConnected        = &clientConnectedState{}
)

// clientHelloState sends the ClientHello and waits for the server to
// either answer with a ServerHello or, with DTLS framing, demand a
// cookie first.
type clientHelloState struct {
	baseState
}

func (clientHelloState) name() string { return "ClientHello" }

func (clientHelloState) onEnter(e *Engine, fc *FlowContext) {
	if !e.state.localRandomSet {
		if err := e.state.localRandom.Populate(); err != nil {
			fc.Fail(&protocol.InternalError{Err: err})

			return
		}
		e.state.localRandomSet = true
		random := e.state.localRandom.MarshalFixed()
		e.state.clientRandom = random[:]
	}

	e.flight.reset()
	e.sendHandshake(fc, &handshake.MessageClientHello{
		Version:            e.protocolVersion(),
		Random:             e.state.localRandom,
		Cookie:             e.state.cookie,
		CipherSuiteIDs:     cipherSuiteIDs(e.cfg.localCipherSuites),
		CompressionMethods: []byte{0x00},
		Datagram:           e.cfg.datagram,
	})
}

func (s clientHelloState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	switch msg.header.Type {
	case handshake.TypeHelloVerifyRequest:
		if !e.cfg.datagram {
			e.unexpectedMessage(fc, msg.header.Type)

			return
		}
		hvr := &handshake.MessageHelloVerifyRequest{}
		if err := hvr.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}
		if !protocol.IsSupported(hvr.Version) {
			e.notify(fc, alert.Fatal, alert.ProtocolVersion, errUnsupportedProtocolVersion)

			return
		}

		// the handshake hash starts over at the ClientHello that
		// carries the cookie
		e.state.cookie = append([]byte{}, hvr.Cookie...)
		e.cache.reset()
		e.transition(fc, clientStateHello)
	case handshake.TypeServerHello:
		sh := &handshake.MessageServerHello{}
		if err := sh.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}
		if !sh.Version.Equal(e.protocolVersion()) {
			e.notify(fc, alert.Fatal, alert.ProtocolVersion, errUnsupportedProtocolVersion)

			return
		}
		if sh.CompressionMethod != 0x00 {
			e.notify(fc, alert.Fatal, alert.IllegalParameter, errCompressionUnsupported)

			return
		}
		suite := cipherSuiteForID(CipherSuiteID(sh.CipherSuiteID))
		if suite == nil || !suite.negotiable || !s.offered(e, sh.CipherSuiteID) {
			e.notify(fc, alert.Fatal, alert.InsufficientSecurity, errCipherSuiteNoIntersection)

			return
		}

		e.state.cipherSuite = suite
		e.state.sessionID = append([]byte{}, sh.SessionID...)
		random := sh.Random.MarshalFixed()
		e.state.serverRandom = random[:]
		e.cacheInbound(msg)
		e.transition(fc, clientStateServerHello)
	default:
		e.unexpectedMessage(fc, msg.header.Type)
	}
}

func (clientHelloState) offered(e *Engine, id uint16) bool {
	for _, suite := range e.cfg.localCipherSuites {
		if uint16(suite.id) == id {
			return true
		}
	}

	return false
}

// clientServerHelloState waits for the message that follows the
// ServerHello, which depends on the negotiated key exchange. With a
// certificate suite the server's chain comes first, with PSK the
// server either offers an identity hint or goes straight to
// ServerHelloDone.
type clientServerHelloState struct {
	baseState
}

func (clientServerHelloState) name() string { return "ServerHello" }

func (clientServerHelloState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	kx := e.state.cipherSuite.keyExchange

	switch {
	case msg.header.Type == handshake.TypeCertificate && kx == handshake.KeyExchangeAlgorithmECDHE:
		cert := &handshake.MessageCertificate{}
		if err := cert.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}
		if len(cert.Certificate) == 0 {
			e.notify(fc, alert.Fatal, alert.BadCertificate, errCertificateMissing)

			return
		}
		if err := e.cfg.certProvider.VerifyPeerChain(cert.Certificate); err != nil {
			e.notify(fc, alert.Fatal, alert.BadCertificate, &protocol.FatalError{Err: err})

			return
		}

		e.state.remoteCertificate = cert.Certificate
		e.cacheInbound(msg)
		e.transition(fc, clientStateKeyExchange)
	case msg.header.Type == handshake.TypeServerKeyExchange && kx == handshake.KeyExchangeAlgorithmPSK:
		ske := &handshake.MessageServerKeyExchange{KeyExchangeAlgorithm: kx}
		if err := ske.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}

		e.state.identityHint = append([]byte{}, ske.IdentityHint...)
		e.cacheInbound(msg)
		e.transition(fc, clientStateKeyExchange)
	case msg.header.Type == handshake.TypeServerHelloDone && kx == handshake.KeyExchangeAlgorithmPSK:
		done := &handshake.MessageServerHelloDone{}
		if err := done.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}

		e.cacheInbound(msg)
		e.transition(fc, clientStateHelloDone)
	default:
		e.unexpectedMessage(fc, msg.header.Type)
	}
}

// clientKeyExchangeState collects the rest of the server's flight, the
// signed key exchange parameters, an optional certificate request, and
// finally the ServerHelloDone.
type clientKeyExchangeState struct {
	baseState
}

func (clientKeyExchangeState) name() string { return "KeyExchange" }

func (s clientKeyExchangeState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) { //nolint:cyclop
	kx := e.state.cipherSuite.keyExchange

	switch {
	case msg.header.Type == handshake.TypeServerKeyExchange &&
		kx == handshake.KeyExchangeAlgorithmECDHE && !e.state.serverKeyExchangeReceived:
		s.handleServerKeyExchange(e, fc, msg)
	case msg.header.Type == handshake.TypeCertificateRequest &&
		kx == handshake.KeyExchangeAlgorithmECDHE && e.state.serverKeyExchangeReceived &&
		!e.state.remoteRequestedCertificate:
		req := &handshake.MessageCertificateRequest{}
		if err := req.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}

		e.state.remoteRequestedCertificate = true
		e.state.remoteCertificateRequest = req
		e.cacheInbound(msg)
	case msg.header.Type == handshake.TypeServerHelloDone:
		if kx == handshake.KeyExchangeAlgorithmECDHE && !e.state.serverKeyExchangeReceived {
			e.notify(fc, alert.Fatal, alert.UnexpectedMessage, errServerKeyExchangeMissing)

			return
		}
		done := &handshake.MessageServerHelloDone{}
		if err := done.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}

		e.cacheInbound(msg)
		e.transition(fc, clientStateHelloDone)
	default:
		e.unexpectedMessage(fc, msg.header.Type)
	}
}

func (clientKeyExchangeState) handleServerKeyExchange(e *Engine, fc *FlowContext, msg *inboundMessage) {
	ske := &handshake.MessageServerKeyExchange{KeyExchangeAlgorithm: handshake.KeyExchangeAlgorithmECDHE}
	if err := ske.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}
	if ske.SignatureAlgorithm != e.state.cipherSuite.auth {
		e.notify(fc, alert.Fatal, alert.IllegalParameter, errKeySignatureMismatch)

		return
	}

	algorithm := signaturehash.Algorithm{Hash: ske.HashAlgorithm, Signature: ske.SignatureAlgorithm}
	err := e.cfg.cryptoAdapter.VerifyKeyExchange(
		e.state.clientRandom, e.state.serverRandom,
		ske.PublicKey, ske.NamedCurve, algorithm,
		e.state.remoteCertificate, ske.Signature,
	)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.DecryptError, errKeySignatureMismatch)

		return
	}

	e.state.remoteCurve = ske.NamedCurve
	e.state.remotePublicKey = ske.PublicKey
	e.state.serverKeyExchangeReceived = true
	e.cacheInbound(msg)
}

// clientHelloDoneState sends the client's second flight, an optional
// certificate, the key exchange, an optional certificate verify, then
// the change cipher spec and Finished. It then waits for the server's
// change cipher spec.
type clientHelloDoneState struct {
	baseState
}

func (clientHelloDoneState) name() string { return "HelloDone" }

func (s clientHelloDoneState) onEnter(e *Engine, fc *FlowContext) {
	e.flight.reset()

	if e.state.remoteRequestedCertificate && !s.sendCertificate(e, fc) {
		return
	}
	if !s.sendKeyExchange(e, fc) {
		return
	}
	if e.state.localCertificateSent && !s.sendCertificateVerify(e, fc) {
		return
	}

	masterSecret, err := e.cfg.cryptoAdapter.MasterSecret(
		e.state.preMasterSecret, e.state.clientRandom, e.state.serverRandom, e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}
	e.state.masterSecret = masterSecret

	if !e.sendChangeCipherSpec(fc) {
		return
	}
	if err := e.rec.SetWriteSecurityParameters(e.securityParameters(1)); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}

	verifyData, err := e.cfg.cryptoAdapter.VerifyDataClient(masterSecret, e.cache.bytes(), e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}
	e.sendHandshake(fc, &handshake.MessageFinished{VerifyData: verifyData})
}

func (clientHelloDoneState) sendCertificate(e *Engine, fc *FlowContext) bool {
	req := e.state.remoteCertificateRequest
	chain := [][]byte{}
	canSign := false
	if req != nil && e.cfg.certProvider.HasCompatibleCertificate(req.CertificateTypes, req.SignatureHashAlgorithms) {
		chain = e.cfg.certProvider.Chain()
		canSign = true
	}

	// an empty list tells the server we have nothing suitable, it is
	// then the server's policy whether to continue
	if !e.sendHandshake(fc, &handshake.MessageCertificate{Certificate: chain}) {
		return false
	}

	if canSign {
		scheme, err := signaturehash.SelectSignatureScheme(req.SignatureHashAlgorithms, e.cfg.certProvider.PrivateKey())
		if err != nil {
			e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

			return false
		}
		e.state.localSignatureScheme = scheme
		e.state.localCertificateSent = true
	}

	return true
}

func (clientHelloDoneState) sendKeyExchange(e *Engine, fc *FlowContext) bool {
	cke := &handshake.MessageClientKeyExchange{KeyExchangeAlgorithm: e.state.cipherSuite.keyExchange}

	switch e.state.cipherSuite.keyExchange {
	case handshake.KeyExchangeAlgorithmPSK:
		psk, err := e.cfg.localPSKCallback(e.state.identityHint)
		if err != nil {
			e.notify(fc, alert.Fatal, alert.InternalError, errPSKRejected)

			return false
		}
		e.state.preMasterSecret = e.cfg.cryptoAdapter.PSKPreMasterSecret(psk)
		cke.Identity = e.cfg.localPSKIdentityHint
	case handshake.KeyExchangeAlgorithmECDHE:
		keypair, err := e.cfg.cryptoAdapter.GenerateKeypair(e.state.remoteCurve)
		if err != nil {
			e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

			return false
		}
		preMasterSecret, err := e.cfg.cryptoAdapter.PreMasterSecret(e.state.remotePublicKey, keypair)
		if err != nil {
			e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

			return false
		}
		e.state.localKeypair = keypair
		e.state.preMasterSecret = preMasterSecret
		cke.PublicKey = keypair.PublicKey
	default:
		e.notify(fc, alert.Fatal, alert.InternalError, errNoAvailableCipherSuites)

		return false
	}

	return e.sendHandshake(fc, cke)
}

func (clientHelloDoneState) sendCertificateVerify(e *Engine, fc *FlowContext) bool {
	signature, err := e.cfg.cryptoAdapter.SignTranscript(
		e.cache.bytes(), e.state.localSignatureScheme, e.cfg.certProvider.PrivateKey())
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return false
	}

	return e.sendHandshake(fc, &handshake.MessageCertificateVerify{
		HashAlgorithm:      e.state.localSignatureScheme.Hash,
		SignatureAlgorithm: e.state.localSignatureScheme.Signature,
		Signature:          signature,
	})
}

func (clientHelloDoneState) onChangeCipherSpec(e *Engine, fc *FlowContext) {
	if err := e.rec.SetReadSecurityParameters(e.securityParameters(1)); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}

	e.transition(fc, clientStateChangeCipherSpec)
}

// clientChangeCipherSpecState waits for the server's Finished under the
// new epoch.
type clientChangeCipherSpecState struct {
	baseState
}

func (clientChangeCipherSpecState) name() string { return "ChangeCipherSpec" }

func (clientChangeCipherSpecState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	if msg.header.Type != handshake.TypeFinished {
		e.unexpectedMessage(fc, msg.header.Type)

		return
	}

	finished := &handshake.MessageFinished{}
	if err := finished.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	expected, err := e.cfg.cryptoAdapter.VerifyDataServer(e.state.masterSecret, e.cache.bytes(), e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}
	if !bytes.Equal(expected, finished.VerifyData) {
		e.notify(fc, alert.Fatal, alert.DecryptError, errVerifyDataMismatch)

		return
	}

	e.cacheInbound(msg)
	e.transition(fc, clientStateConnected)
}

// clientConnectedState is the steady state. The only handshake traffic
// still tolerated is a HelloRequest, which is answered with a warning
// alert because renegotiation is not supported.
type clientConnectedState struct {
	baseState
}

func (clientConnectedState) name() string { return "Connected" }

func (clientConnectedState) onEnter(e *Engine, _ *FlowContext) {
	e.log.Tracef("[handshake:%s] completed, %s", e.role(), e.state.cipherSuite.name)
	e.rec.Connect()
}

func (clientConnectedState) onExit(e *Engine) {
	e.rec.Disconnect()
}

func (clientConnectedState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	if msg.header.Type == handshake.TypeHelloRequest {
		hr := &handshake.MessageHelloRequest{}
		if err := hr.Unmarshal(msg.body); err != nil {
			e.notify(fc, alert.Fatal, alert.DecodeError, err)

			return
		}

		e.notify(fc, alert.Warning, alert.NoRenegotiation, errRenegotiationRejected)

		return
	}

	e.unexpectedMessage(fc, msg.header.Type)
}
