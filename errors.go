package tlshake

import (
	"errors"
	"fmt"

	"github.com/quartzsec/tlshake/pkg/protocol"
)

// Typed errors
var (
	errConfigMissing           = &protocol.FatalError{Err: errors.New("no config provided")}                                       //nolint:goerr113
	errRecordProtocolMissing   = &protocol.FatalError{Err: errors.New("no record protocol provided")}                              //nolint:goerr113
	errNoAvailableCipherSuites = &protocol.FatalError{Err: errors.New("connection can not be created, no cipher suite available")} //nolint:goerr113
	errPSKAndIdentityMustBeSet = &protocol.FatalError{Err: errors.New("PSK and PSK identity hint must both be set for client")}    //nolint:goerr113
	errNoCredentials           = &protocol.FatalError{Err: errors.New("server must be configured with a PSK or a certificate")}    //nolint:goerr113
	errPrivateKeyMissing       = &protocol.FatalError{Err: errors.New("certificate configured without a private key")}             //nolint:goerr113

	errUnexpectedMessage          = &protocol.FatalError{Err: errors.New("unexpected handshake message for current state")}          //nolint:goerr113
	errUnexpectedChangeCipherSpec = &protocol.FatalError{Err: errors.New("unexpected change cipher spec for current state")}         //nolint:goerr113
	errUnsupportedProtocolVersion = &protocol.FatalError{Err: errors.New("unsupported protocol version")}                            //nolint:goerr113
	errCipherSuiteNoIntersection  = &protocol.FatalError{Err: errors.New("client+server do not support any shared cipher suites")}   //nolint:goerr113
	errCompressionUnsupported     = &protocol.FatalError{Err: errors.New("unsupported compression method")}                          //nolint:goerr113
	errRetransmitBudgetExhausted  = &protocol.HandshakeError{Err: errors.New("handshake failed, retransmit budget exhausted")}       //nolint:goerr113
	errVerifyDataMismatch         = &protocol.FatalError{Err: errors.New("verify data does not match transcript")}                   //nolint:goerr113
	errKeySignatureMismatch       = &protocol.FatalError{Err: errors.New("key exchange signature could not be verified")}            //nolint:goerr113
	errRenegotiationRejected      = &protocol.TemporaryError{Err: errors.New("peer attempted renegotiation, rejected")}              //nolint:goerr113
	errCertificateMissing         = &protocol.FatalError{Err: errors.New("peer did not provide a certificate")}                      //nolint:goerr113
	errClientCertificateRequired  = &protocol.FatalError{Err: errors.New("client certificate required but none was presented")}      //nolint:goerr113
	errClientCertificateNotVerify = &protocol.FatalError{Err: errors.New("client certificate presented without certificate verify")} //nolint:goerr113
	errNoCompatibleCertificate    = &protocol.FatalError{Err: errors.New("no certificate compatible with the peer's request")}       //nolint:goerr113
	errPSKRejected                = &protocol.FatalError{Err: errors.New("pre-shared key lookup failed")}                            //nolint:goerr113
	errServerKeyExchangeMissing   = &protocol.FatalError{Err: errors.New("server hello done before server key exchange")}            //nolint:goerr113
	errEngineClosed               = &protocol.FatalError{Err: errors.New("engine is disconnected")}                                  //nolint:goerr113
	errInvalidSignatureAlgorithm  = &protocol.InternalError{Err: errors.New("signature algorithm unsupported for key type")}         //nolint:goerr113
	errMessageLengthMismatch      = &protocol.FatalError{Err: errors.New("handshake message length does not match header")}          //nolint:goerr113
)

type invalidCipherSuiteError struct {
	id CipherSuiteID
}

func (e *invalidCipherSuiteError) Error() string {
	return fmt.Sprintf("cipher suite with id(%d) is not valid", e.id)
}

func (e *invalidCipherSuiteError) Is(err error) bool {
	var other *invalidCipherSuiteError
	if errors.As(err, &other) {
		return e.id == other.id
	}

	return false
}
