package tlshake

import (
	"crypto/sha256"
	"fmt"

	"github.com/quartzsec/tlshake/pkg/crypto/prf"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

// CipherSuiteID is an ID for our supported CipherSuites.
type CipherSuiteID uint16

// Supported Cipher Suites.
const (
	TLS_PSK_WITH_AES_128_GCM_SHA256 CipherSuiteID = 0x00a8 //nolint:revive,stylecheck
	TLS_PSK_WITH_AES_128_CBC_SHA256 CipherSuiteID = 0x00ae //nolint:revive,stylecheck
	TLS_PSK_WITH_AES_128_CCM_8      CipherSuiteID = 0xc0a8 //nolint:revive,stylecheck

	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256 CipherSuiteID = 0xc02b //nolint:revive,stylecheck
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256   CipherSuiteID = 0xc02f //nolint:revive,stylecheck
	TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA    CipherSuiteID = 0xc00a //nolint:revive,stylecheck
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA      CipherSuiteID = 0xc014 //nolint:revive,stylecheck

	// TLS_RSA_WITH_AES_128_CBC_SHA is recognized on the wire but never
	// negotiated, static RSA key transport is not implemented.
	TLS_RSA_WITH_AES_128_CBC_SHA CipherSuiteID = 0x002f //nolint:revive,stylecheck
)

func (c CipherSuiteID) String() string {
	if suite, ok := cipherSuites[c]; ok {
		return suite.name
	}

	return fmt.Sprintf("unknown(0x%04x)", uint16(c))
}

// cipherSuite describes what the handshake layer needs to know about a
// suite: how the premaster secret is established, how the server
// authenticates, and the hash driving the PRF. Record protection is the
// record protocol's concern.
type cipherSuite struct {
	id   CipherSuiteID
	name string

	keyExchange handshake.KeyExchangeAlgorithm
	auth        signature.Algorithm

	hash prf.HashFunc

	negotiable bool
}

var cipherSuites = map[CipherSuiteID]*cipherSuite{ //nolint:gochecknoglobals
	TLS_PSK_WITH_AES_128_GCM_SHA256: {
		id: TLS_PSK_WITH_AES_128_GCM_SHA256, name: "TLS_PSK_WITH_AES_128_GCM_SHA256",
		keyExchange: handshake.KeyExchangeAlgorithmPSK, auth: signature.Anonymous,
		hash: sha256.New, negotiable: true,
	},
	TLS_PSK_WITH_AES_128_CBC_SHA256: {
		id: TLS_PSK_WITH_AES_128_CBC_SHA256, name: "TLS_PSK_WITH_AES_128_CBC_SHA256",
		keyExchange: handshake.KeyExchangeAlgorithmPSK, auth: signature.Anonymous,
		hash: sha256.New, negotiable: true,
	},
	TLS_PSK_WITH_AES_128_CCM_8: {
		id: TLS_PSK_WITH_AES_128_CCM_8, name: "TLS_PSK_WITH_AES_128_CCM_8",
		keyExchange: handshake.KeyExchangeAlgorithmPSK, auth: signature.Anonymous,
		hash: sha256.New, negotiable: true,
	},
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256: {
		id: TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, name: "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
		keyExchange: handshake.KeyExchangeAlgorithmECDHE, auth: signature.ECDSA,
		hash: sha256.New, negotiable: true,
	},
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256: {
		id: TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, name: "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		keyExchange: handshake.KeyExchangeAlgorithmECDHE, auth: signature.RSA,
		hash: sha256.New, negotiable: true,
	},
	TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA: {
		id: TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA, name: "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA",
		keyExchange: handshake.KeyExchangeAlgorithmECDHE, auth: signature.ECDSA,
		hash: sha256.New, negotiable: true,
	},
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA: {
		id: TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA, name: "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA",
		keyExchange: handshake.KeyExchangeAlgorithmECDHE, auth: signature.RSA,
		hash: sha256.New, negotiable: true,
	},
	TLS_RSA_WITH_AES_128_CBC_SHA: {
		id: TLS_RSA_WITH_AES_128_CBC_SHA, name: "TLS_RSA_WITH_AES_128_CBC_SHA",
		keyExchange: handshake.KeyExchangeAlgorithmNone, auth: signature.RSA,
		hash: sha256.New, negotiable: false,
	},
}

func cipherSuiteForID(id CipherSuiteID) *cipherSuite {
	return cipherSuites[id]
}

// parseCipherSuites resolves the configured ids, or the defaults when
// none are configured, against the available credentials. A client may
// offer certificate suites without holding a certificate of its own,
// a server can only accept them when it has one to present.
func parseCipherSuites(ids []CipherSuiteID, havePSK, haveCertificate, isClient bool) ([]*cipherSuite, error) {
	if len(ids) == 0 {
		ids = defaultCipherSuiteIDs(havePSK, haveCertificate)
	}

	out := []*cipherSuite{}
	for _, id := range ids {
		suite := cipherSuiteForID(id)
		if suite == nil || !suite.negotiable {
			return nil, &invalidCipherSuiteError{id}
		}
		if suite.keyExchange == handshake.KeyExchangeAlgorithmPSK && !havePSK {
			continue
		}
		if suite.keyExchange == handshake.KeyExchangeAlgorithmECDHE && !isClient && !haveCertificate {
			continue
		}
		out = append(out, suite)
	}

	if len(out) == 0 {
		return nil, errNoAvailableCipherSuites
	}

	return out, nil
}

func defaultCipherSuiteIDs(havePSK, haveCertificate bool) []CipherSuiteID {
	ids := []CipherSuiteID{}
	if haveCertificate || !havePSK {
		ids = append(ids,
			TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
			TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		)
	}
	if havePSK {
		ids = append(ids,
			TLS_PSK_WITH_AES_128_GCM_SHA256,
			TLS_PSK_WITH_AES_128_CBC_SHA256,
			TLS_PSK_WITH_AES_128_CCM_8,
		)
	}

	return ids
}

// findMatchingCipherSuite returns the first of our suites the peer
// offered as well, in our preference order.
func findMatchingCipherSuite(local []*cipherSuite, remote []uint16) (*cipherSuite, bool) {
	for _, suite := range local {
		for _, id := range remote {
			if uint16(suite.id) == id {
				return suite, true
			}
		}
	}

	return nil, false
}

func cipherSuiteIDs(suites []*cipherSuite) []uint16 {
	ids := make([]uint16, 0, len(suites))
	for _, suite := range suites {
		ids = append(ids, uint16(suite.id))
	}

	return ids
}
