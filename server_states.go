package tlshake

import (
	"bytes"
	"crypto"
	"crypto/rand"

	"github.com/quartzsec/tlshake/pkg/crypto/clientcertificate"
	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
	"github.com/quartzsec/tlshake/pkg/protocol"
	"github.com/quartzsec/tlshake/pkg/protocol/alert"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

const cookieLength = 20

// Server side state singletons.
//
//nolint:gochecknoglobals
var (
	serverStateStart            = &serverStartState{}
	serverStateClientHello      = &serverClientHelloState{}
	serverStateChangeCipherSpec = &serverChangeCipherSpecState{}
	serverStateConnected        = &serverConnectedState{}
)

// serverStartState waits for a ClientHello. With DTLS framing a hello
// without a valid cookie is answered with a HelloVerifyRequest, which
// is never retransmitted and never enters the transcript, and the
// state does not change until a hello echoes the cookie back.
type serverStartState struct {
	baseState
}

func (serverStartState) name() string { return "Start" }

func (serverStartState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	if msg.header.Type != handshake.TypeClientHello {
		e.unexpectedMessage(fc, msg.header.Type)

		return
	}

	ch := &handshake.MessageClientHello{Datagram: e.cfg.datagram}
	if err := ch.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}
	if !ch.Version.Equal(e.protocolVersion()) {
		e.notify(fc, alert.Fatal, alert.ProtocolVersion, errUnsupportedProtocolVersion)

		return
	}

	if e.cfg.datagram && !cookieValid(e, ch.Cookie) {
		demandCookie(e, fc)

		return
	}

	if !bytes.Contains(ch.CompressionMethods, []byte{0x00}) {
		e.notify(fc, alert.Fatal, alert.IllegalParameter, errCompressionUnsupported)

		return
	}
	suite, ok := findMatchingCipherSuite(e.cfg.localCipherSuites, ch.CipherSuiteIDs)
	if !ok {
		e.notify(fc, alert.Fatal, alert.InsufficientSecurity, errCipherSuiteNoIntersection)

		return
	}

	e.state.cipherSuite = suite
	random := ch.Random.MarshalFixed()
	e.state.clientRandom = random[:]
	e.cacheInbound(msg)
	e.transition(fc, serverStateClientHello)
}

func cookieValid(e *Engine, cookie []byte) bool {
	return len(e.state.cookie) > 0 && bytes.Equal(cookie, e.state.cookie)
}

func demandCookie(e *Engine, fc *FlowContext) {
	cookie := make([]byte, cookieLength)
	if _, err := rand.Read(cookie); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}
	e.state.cookie = cookie

	e.sendHandshakeOnce(fc, &handshake.MessageHelloVerifyRequest{
		Version: protocol.VersionDTLS1_2,
		Cookie:  cookie,
	})
}

// serverClientHelloState sends the server's flight, ServerHello through
// ServerHelloDone, then collects the client's answer up to its change
// cipher spec.
type serverClientHelloState struct {
	baseState
}

func (serverClientHelloState) name() string { return "ClientHello" }

func (s serverClientHelloState) onEnter(e *Engine, fc *FlowContext) {
	if err := e.state.localRandom.Populate(); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}
	random := e.state.localRandom.MarshalFixed()
	e.state.serverRandom = random[:]

	e.flight.reset()
	ok := e.sendHandshake(fc, &handshake.MessageServerHello{
		Version:           e.protocolVersion(),
		Random:            e.state.localRandom,
		CipherSuiteID:     uint16(e.state.cipherSuite.id),
		CompressionMethod: 0x00,
	})
	if !ok {
		return
	}

	switch e.state.cipherSuite.keyExchange {
	case handshake.KeyExchangeAlgorithmECDHE:
		if !s.sendCertificateFlight(e, fc) {
			return
		}
	case handshake.KeyExchangeAlgorithmPSK:
		if len(e.cfg.localPSKIdentityHint) > 0 {
			ske := &handshake.MessageServerKeyExchange{
				IdentityHint:         e.cfg.localPSKIdentityHint,
				KeyExchangeAlgorithm: handshake.KeyExchangeAlgorithmPSK,
			}
			if !e.sendHandshake(fc, ske) {
				return
			}
		}
	}

	e.sendHandshake(fc, &handshake.MessageServerHelloDone{})
}

func (serverClientHelloState) sendCertificateFlight(e *Engine, fc *FlowContext) bool {
	if !e.sendHandshake(fc, &handshake.MessageCertificate{Certificate: e.cfg.certProvider.Chain()}) {
		return false
	}

	keypair, err := e.cfg.cryptoAdapter.GenerateKeypair(elliptic.X25519)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return false
	}
	e.state.localKeypair = keypair

	scheme, err := signatureSchemeForAuth(e.state.cipherSuite.auth, e.cfg.certProvider.PrivateKey())
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return false
	}
	sig, err := e.cfg.cryptoAdapter.SignKeyExchange(
		e.state.clientRandom, e.state.serverRandom,
		keypair.PublicKey, keypair.Curve, scheme, e.cfg.certProvider.PrivateKey())
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return false
	}

	ske := &handshake.MessageServerKeyExchange{
		EllipticCurveType:    elliptic.CurveTypeNamedCurve,
		NamedCurve:           keypair.Curve,
		PublicKey:            keypair.PublicKey,
		HashAlgorithm:        scheme.Hash,
		SignatureAlgorithm:   scheme.Signature,
		Signature:            sig,
		KeyExchangeAlgorithm: handshake.KeyExchangeAlgorithmECDHE,
	}
	if !e.sendHandshake(fc, ske) {
		return false
	}

	if e.cfg.clientAuth > NoClientCert {
		req := &handshake.MessageCertificateRequest{
			CertificateTypes:        []clientcertificate.Type{clientcertificate.RSASign, clientcertificate.ECDSASign},
			SignatureHashAlgorithms: signaturehash.Algorithms(),
		}
		if !e.sendHandshake(fc, req) {
			return false
		}
	}

	return true
}

// signatureSchemeForAuth picks a signature and hash pair matching the
// suite's authentication algorithm that the private key can produce.
func signatureSchemeForAuth(auth signature.Algorithm, privateKey crypto.PrivateKey) (signaturehash.Algorithm, error) {
	candidates := []signaturehash.Algorithm{}
	for _, a := range signaturehash.Algorithms() {
		if a.Signature == auth {
			candidates = append(candidates, a)
		}
	}

	return signaturehash.SelectSignatureScheme(candidates, privateKey)
}

func (s serverClientHelloState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	certExpected := e.cfg.clientAuth > NoClientCert &&
		e.state.cipherSuite.keyExchange == handshake.KeyExchangeAlgorithmECDHE

	switch {
	case msg.header.Type == handshake.TypeCertificate &&
		certExpected && !e.state.clientCertificateReceived && !e.state.clientKeyExchangeReceived:
		s.handleCertificate(e, fc, msg)
	case msg.header.Type == handshake.TypeClientKeyExchange && !e.state.clientKeyExchangeReceived:
		if certExpected && !e.state.clientCertificateReceived {
			e.unexpectedMessage(fc, msg.header.Type)

			return
		}
		s.handleClientKeyExchange(e, fc, msg)
	case msg.header.Type == handshake.TypeCertificateVerify &&
		e.state.clientKeyExchangeReceived && len(e.state.remoteCertificate) > 0 &&
		!e.state.clientCertificateVerified:
		s.handleCertificateVerify(e, fc, msg)
	default:
		e.unexpectedMessage(fc, msg.header.Type)
	}
}

func (serverClientHelloState) handleCertificate(e *Engine, fc *FlowContext, msg *inboundMessage) {
	cert := &handshake.MessageCertificate{}
	if err := cert.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	if len(cert.Certificate) == 0 {
		if e.cfg.clientAuth == RequireAndVerifyClientCert {
			e.notify(fc, alert.Fatal, alert.HandshakeFailure, errClientCertificateRequired)

			return
		}
	} else if e.cfg.clientAuth == RequireAndVerifyClientCert {
		if err := e.cfg.certProvider.VerifyPeerChain(cert.Certificate); err != nil {
			e.notify(fc, alert.Fatal, alert.BadCertificate, &protocol.FatalError{Err: err})

			return
		}
	}

	e.state.remoteCertificate = cert.Certificate
	e.state.clientCertificateReceived = true
	e.cacheInbound(msg)
}

func (serverClientHelloState) handleClientKeyExchange(e *Engine, fc *FlowContext, msg *inboundMessage) {
	cke := &handshake.MessageClientKeyExchange{KeyExchangeAlgorithm: e.state.cipherSuite.keyExchange}
	if err := cke.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	switch e.state.cipherSuite.keyExchange {
	case handshake.KeyExchangeAlgorithmPSK:
		psk, err := e.cfg.localPSKCallback(cke.Identity)
		if err != nil {
			e.notify(fc, alert.Fatal, alert.DecryptError, errPSKRejected)

			return
		}
		e.state.preMasterSecret = e.cfg.cryptoAdapter.PSKPreMasterSecret(psk)
	case handshake.KeyExchangeAlgorithmECDHE:
		preMasterSecret, err := e.cfg.cryptoAdapter.PreMasterSecret(cke.PublicKey, e.state.localKeypair)
		if err != nil {
			e.notify(fc, alert.Fatal, alert.IllegalParameter, &protocol.FatalError{Err: err})

			return
		}
		e.state.preMasterSecret = preMasterSecret
	}

	masterSecret, err := e.cfg.cryptoAdapter.MasterSecret(
		e.state.preMasterSecret, e.state.clientRandom, e.state.serverRandom, e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}

	e.state.masterSecret = masterSecret
	e.state.clientKeyExchangeReceived = true
	e.cacheInbound(msg)
}

func (serverClientHelloState) handleCertificateVerify(e *Engine, fc *FlowContext, msg *inboundMessage) {
	cv := &handshake.MessageCertificateVerify{}
	if err := cv.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	algorithm := signaturehash.Algorithm{Hash: cv.HashAlgorithm, Signature: cv.SignatureAlgorithm}
	err := e.cfg.cryptoAdapter.VerifyTranscript(e.cache.bytes(), algorithm, e.state.remoteCertificate, cv.Signature)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.DecryptError, errKeySignatureMismatch)

		return
	}

	e.state.clientCertificateVerified = true
	e.cacheInbound(msg)
}

func (serverClientHelloState) onChangeCipherSpec(e *Engine, fc *FlowContext) {
	if !e.state.clientKeyExchangeReceived {
		e.notify(fc, alert.Fatal, alert.UnexpectedMessage, errUnexpectedChangeCipherSpec)

		return
	}
	if len(e.state.remoteCertificate) > 0 && !e.state.clientCertificateVerified {
		e.notify(fc, alert.Fatal, alert.UnexpectedMessage, errClientCertificateNotVerify)

		return
	}

	if err := e.rec.SetReadSecurityParameters(e.securityParameters(1)); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}

	e.transition(fc, serverStateChangeCipherSpec)
}

// serverChangeCipherSpecState waits for the client's Finished under the
// new epoch.
type serverChangeCipherSpecState struct {
	baseState
}

func (serverChangeCipherSpecState) name() string { return "ChangeCipherSpec" }

func (serverChangeCipherSpecState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	if msg.header.Type != handshake.TypeFinished {
		e.unexpectedMessage(fc, msg.header.Type)

		return
	}

	finished := &handshake.MessageFinished{}
	if err := finished.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	expected, err := e.cfg.cryptoAdapter.VerifyDataClient(e.state.masterSecret, e.cache.bytes(), e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}
	if !bytes.Equal(expected, finished.VerifyData) {
		e.notify(fc, alert.Fatal, alert.DecryptError, errVerifyDataMismatch)

		return
	}

	e.cacheInbound(msg)
	e.transition(fc, serverStateConnected)
}

// serverConnectedState sends the server's final flight, change cipher
// spec and Finished, and then holds the connection. A fresh ClientHello
// re-runs the cookie check so a rebooted client can be told to start
// over, but renegotiation of an established connection is rejected.
type serverConnectedState struct {
	baseState
}

func (serverConnectedState) name() string { return "Connected" }

func (serverConnectedState) onEnter(e *Engine, fc *FlowContext) {
	e.flight.reset()

	if !e.sendChangeCipherSpec(fc) {
		return
	}
	if err := e.rec.SetWriteSecurityParameters(e.securityParameters(1)); err != nil {
		fc.Fail(&protocol.InternalError{Err: err})

		return
	}

	verifyData, err := e.cfg.cryptoAdapter.VerifyDataServer(e.state.masterSecret, e.cache.bytes(), e.state.cipherSuite.hash)
	if err != nil {
		e.notify(fc, alert.Fatal, alert.InternalError, &protocol.InternalError{Err: err})

		return
	}
	if !e.sendHandshake(fc, &handshake.MessageFinished{VerifyData: verifyData}) {
		return
	}

	e.log.Tracef("[handshake:%s] completed, %s", e.role(), e.state.cipherSuite.name)
	e.rec.Connect()
}

func (serverConnectedState) onExit(e *Engine) {
	e.rec.Disconnect()
}

func (serverConnectedState) onMessage(e *Engine, fc *FlowContext, msg *inboundMessage) {
	if msg.header.Type != handshake.TypeClientHello {
		e.unexpectedMessage(fc, msg.header.Type)

		return
	}

	ch := &handshake.MessageClientHello{Datagram: e.cfg.datagram}
	if err := ch.Unmarshal(msg.body); err != nil {
		e.notify(fc, alert.Fatal, alert.DecodeError, err)

		return
	}

	if e.cfg.datagram && !cookieValid(e, ch.Cookie) {
		// plausibly a client that lost all state, make it prove its
		// address again before anything is torn down
		demandCookie(e, fc)

		return
	}

	e.notify(fc, alert.Warning, alert.NoRenegotiation, errRenegotiationRejected)
}
