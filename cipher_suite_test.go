package tlshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

func TestCipherSuiteID(t *testing.T) {
	assert.Equal(t, "TLS_PSK_WITH_AES_128_GCM_SHA256", TLS_PSK_WITH_AES_128_GCM_SHA256.String())
	assert.Equal(t, "unknown(0x1234)", CipherSuiteID(0x1234).String())

	suite := cipherSuiteForID(TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256)
	require.NotNil(t, suite)
	assert.Equal(t, handshake.KeyExchangeAlgorithmECDHE, suite.keyExchange)

	assert.Nil(t, cipherSuiteForID(0xffff))
}

func TestStaticRSARecognizedButNotNegotiable(t *testing.T) {
	suite := cipherSuiteForID(TLS_RSA_WITH_AES_128_CBC_SHA)
	require.NotNil(t, suite)
	assert.False(t, suite.negotiable)

	_, err := parseCipherSuites([]CipherSuiteID{TLS_RSA_WITH_AES_128_CBC_SHA}, false, true, true)
	assert.ErrorIs(t, err, &invalidCipherSuiteError{TLS_RSA_WITH_AES_128_CBC_SHA})
}

func TestParseCipherSuitesCredentialFilter(t *testing.T) {
	cases := map[string]struct {
		ids      []CipherSuiteID
		havePSK  bool
		haveCert bool
		isClient bool
		want     []CipherSuiteID
		wantErr  error
	}{
		"DefaultsPSKOnly": {
			havePSK: true,
			want: []CipherSuiteID{
				TLS_PSK_WITH_AES_128_GCM_SHA256,
				TLS_PSK_WITH_AES_128_CBC_SHA256,
				TLS_PSK_WITH_AES_128_CCM_8,
			},
		},
		"ServerDropsCertificateSuitesWithoutCertificate": {
			ids:     []CipherSuiteID{TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, TLS_PSK_WITH_AES_128_GCM_SHA256},
			havePSK: true,
			want:    []CipherSuiteID{TLS_PSK_WITH_AES_128_GCM_SHA256},
		},
		"ClientKeepsCertificateSuitesWithoutCertificate": {
			ids:      []CipherSuiteID{TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256},
			isClient: true,
			want:     []CipherSuiteID{TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256},
		},
		"PSKSuitesNeedPSK": {
			ids:      []CipherSuiteID{TLS_PSK_WITH_AES_128_GCM_SHA256},
			haveCert: true,
			isClient: true,
			wantErr:  errNoAvailableCipherSuites,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			suites, err := parseCipherSuites(testCase.ids, testCase.havePSK, testCase.haveCert, testCase.isClient)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)

				return
			}

			require.NoError(t, err)
			got := []CipherSuiteID{}
			for _, suite := range suites {
				got = append(got, suite.id)
			}
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestFindMatchingCipherSuite(t *testing.T) {
	local, err := parseCipherSuites(
		[]CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256},
		false, true, false)
	require.NoError(t, err)

	// server preference order wins
	suite, ok := findMatchingCipherSuite(local, []uint16{
		uint16(TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256),
		uint16(TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256),
	})
	require.True(t, ok)
	assert.Equal(t, TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, suite.id)

	_, ok = findMatchingCipherSuite(local, []uint16{uint16(TLS_PSK_WITH_AES_128_CCM_8)})
	assert.False(t, ok)
}
