package handshake

import (
	"testing"

	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/crypto/hash"
	"github.com/quartzsec/tlshake/pkg/crypto/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageServerKeyExchangePSK(t *testing.T) {
	m := &MessageServerKeyExchange{
		IdentityHint:         []byte("webrtc hint"),
		KeyExchangeAlgorithm: KeyExchangeAlgorithmPSK,
	}
	raw, err := m.Marshal()
	require.NoError(t, err)

	parsed := &MessageServerKeyExchange{KeyExchangeAlgorithm: KeyExchangeAlgorithmPSK}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, m.IdentityHint, parsed.IdentityHint)

	// declared hint length exceeding the buffer fails
	raw[0], raw[1] = 0xFF, 0xFF
	assert.ErrorIs(t, parsed.Unmarshal(raw), errLengthMismatch)
}

func TestMessageServerKeyExchangeECDHE(t *testing.T) {
	m := &MessageServerKeyExchange{
		EllipticCurveType:    elliptic.CurveTypeNamedCurve,
		NamedCurve:           elliptic.X25519,
		PublicKey:            make([]byte, 32),
		HashAlgorithm:        hash.SHA256,
		SignatureAlgorithm:   signature.ECDSA,
		Signature:            []byte{0x01, 0x02, 0x03, 0x04},
		KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE,
	}
	raw, err := m.Marshal()
	require.NoError(t, err)

	parsed := &MessageServerKeyExchange{KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, m, parsed)
}

func TestMessageServerKeyExchangeECDHEInvalid(t *testing.T) {
	valid := &MessageServerKeyExchange{
		EllipticCurveType:    elliptic.CurveTypeNamedCurve,
		NamedCurve:           elliptic.X25519,
		PublicKey:            make([]byte, 32),
		HashAlgorithm:        hash.SHA256,
		SignatureAlgorithm:   signature.ECDSA,
		Signature:            []byte{0x01, 0x02, 0x03, 0x04},
		KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE,
	}
	raw, err := valid.Marshal()
	require.NoError(t, err)

	cases := map[string]struct {
		mutate func([]byte) []byte
		expErr error
	}{
		"unknown curve type": {
			mutate: func(b []byte) []byte { b[0] = 0x01; return b },
			expErr: errInvalidEllipticCurveType,
		},
		"reserved named curve": {
			mutate: func(b []byte) []byte { b[1], b[2] = 0xAB, 0xCD; return b },
			expErr: errInvalidNamedCurve,
		},
		"reserved hash algorithm": {
			mutate: func(b []byte) []byte { b[36] = 0x07; return b },
			expErr: errInvalidHashAlgorithm,
		},
		"signature length mismatch": {
			mutate: func(b []byte) []byte { return b[:len(b)-1] },
			expErr: errLengthMismatch,
		},
		"truncated": {
			mutate: func(b []byte) []byte { return b[:2] },
			expErr: errBufferTooSmall,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			raw := append([]byte{}, raw...)
			parsed := &MessageServerKeyExchange{KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE}
			assert.ErrorIs(t, parsed.Unmarshal(testCase.mutate(raw)), testCase.expErr)
		})
	}
}

func TestMessageClientKeyExchange(t *testing.T) {
	t.Run("psk identity", func(t *testing.T) {
		m := &MessageClientKeyExchange{
			Identity:             []byte("client identity"),
			KeyExchangeAlgorithm: KeyExchangeAlgorithmPSK,
		}
		raw, err := m.Marshal()
		require.NoError(t, err)

		parsed := &MessageClientKeyExchange{KeyExchangeAlgorithm: KeyExchangeAlgorithmPSK}
		require.NoError(t, parsed.Unmarshal(raw))
		assert.Equal(t, m.Identity, parsed.Identity)
	})

	t.Run("ecdhe public key", func(t *testing.T) {
		m := &MessageClientKeyExchange{
			PublicKey:            make([]byte, 65),
			KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE,
		}
		raw, err := m.Marshal()
		require.NoError(t, err)

		parsed := &MessageClientKeyExchange{KeyExchangeAlgorithm: KeyExchangeAlgorithmECDHE}
		require.NoError(t, parsed.Unmarshal(raw))
		assert.Equal(t, m.PublicKey, parsed.PublicKey)
	})

	t.Run("form unset", func(t *testing.T) {
		m := &MessageClientKeyExchange{}
		assert.ErrorIs(t, m.Unmarshal([]byte{0x00, 0x00}), errInvalidClientKeyExchange)
	})
}
