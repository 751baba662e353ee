package tlshake

import (
	"crypto"
	"crypto/x509"

	"github.com/pion/logging"
)

const defaultMaximumRetransmits = 3

// PSKCallback resolves the pre-shared key for an identity hint. The
// hint is nil when the peer sent none.
type PSKCallback func(hint []byte) ([]byte, error)

// ClientAuthType declares the policy the server will follow for client
// certificates.
type ClientAuthType int

// ClientAuthType enums.
const (
	NoClientCert ClientAuthType = iota
	RequestClientCert
	RequireAndVerifyClientCert
)

// Config is used to configure an Engine. After passing a Config to
// NewClient or NewServer it must not be modified.
type Config struct {
	// CipherSuites restricts the suites offered (client) or accepted
	// (server). Defaults are derived from the configured credentials.
	CipherSuites []CipherSuiteID

	// PSK enables pre-shared key suites.
	PSK             PSKCallback
	PSKIdentityHint []byte

	// Certificates is the local DER encoded chain, leaf first.
	Certificates [][]byte
	PrivateKey   crypto.PrivateKey

	// ClientAuth is only used by servers.
	ClientAuth ClientAuthType

	// VerifyPeerCertificate, when set, replaces the built in chain
	// verification against RootCAs.
	VerifyPeerCertificate func(rawCertificates [][]byte) error
	RootCAs               *x509.CertPool
	InsecureSkipVerify    bool

	// Datagram selects DTLS 1.2 framing and the cookie exchange.
	// When false the engine speaks TLS 1.2 over a stream transport.
	Datagram bool

	// MaximumRetransmits bounds how often a flight is retransmitted on
	// timer expiry before the handshake is abandoned. Defaults to 3.
	MaximumRetransmits int

	LoggerFactory logging.LoggerFactory

	// CryptoAdapter and CertificateProvider override the built in
	// implementations, mainly useful for tests and external key stores.
	CryptoAdapter       CryptoAdapter
	CertificateProvider CertificateProvider
}

// handshakeConfig is the resolved, immutable form of a Config.
type handshakeConfig struct {
	localCipherSuites    []*cipherSuite
	localPSKCallback     PSKCallback
	localPSKIdentityHint []byte
	clientAuth           ClientAuthType
	datagram             bool
	maximumRetransmits   int

	certProvider  CertificateProvider
	cryptoAdapter CryptoAdapter

	log logging.LeveledLogger
}

func resolveConfig(config *Config, isClient bool) (*handshakeConfig, error) {
	if err := validateConfig(config, isClient); err != nil {
		return nil, err
	}

	suites, err := parseCipherSuites(config.CipherSuites, config.PSK != nil, len(config.Certificates) > 0, isClient)
	if err != nil {
		return nil, err
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	retransmits := config.MaximumRetransmits
	if retransmits <= 0 {
		retransmits = defaultMaximumRetransmits
	}

	certProvider := config.CertificateProvider
	if certProvider == nil {
		certProvider = &configCertificateProvider{
			chain:                 config.Certificates,
			privateKey:            config.PrivateKey,
			verifyPeerCertificate: config.VerifyPeerCertificate,
			rootCAs:               config.RootCAs,
			insecureSkipVerify:    config.InsecureSkipVerify,
		}
	}

	cryptoAdapter := config.CryptoAdapter
	if cryptoAdapter == nil {
		cryptoAdapter = defaultCryptoAdapter{}
	}

	return &handshakeConfig{
		localCipherSuites:    suites,
		localPSKCallback:     config.PSK,
		localPSKIdentityHint: config.PSKIdentityHint,
		clientAuth:           config.ClientAuth,
		datagram:             config.Datagram,
		maximumRetransmits:   retransmits,
		certProvider:         certProvider,
		cryptoAdapter:        cryptoAdapter,
		log:                  loggerFactory.NewLogger("tlshake"),
	}, nil
}
