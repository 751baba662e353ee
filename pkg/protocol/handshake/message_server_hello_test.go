package handshake

import (
	"testing"
	"time"

	"github.com/quartzsec/tlshake/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageServerHelloRoundTrip(t *testing.T) {
	random := Random{GMTUnixTime: time.Unix(1000, 0)}
	for i := range random.RandomBytes {
		random.RandomBytes[i] = byte(0xFF - i)
	}

	m := &MessageServerHello{
		Version:           protocol.VersionDTLS1_2,
		Random:            random,
		CipherSuiteID:     0x002F,
		CompressionMethod: 0x00,
	}

	raw, err := m.Marshal()
	require.NoError(t, err)

	parsed := &MessageServerHello{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, uint16(0x002F), parsed.CipherSuiteID)
	assert.Equal(t, random.RandomBytes, parsed.Random.RandomBytes)
	assert.Nil(t, parsed.SessionID)
	assert.Nil(t, parsed.Extensions)
	assert.Equal(t, m, parsed)
}

func TestMessageServerHelloInvalid(t *testing.T) {
	cases := map[string]struct {
		raw    []byte
		expErr error
	}{
		"too short":           {raw: make([]byte, 10), expErr: errBufferTooSmall},
		"session id past end": {raw: append(make([]byte, 2+RandomLength), 0x05, 0xAA), expErr: errBufferTooSmall},
		"extensions length mismatch": {
			raw:    append(append(make([]byte, 2+RandomLength), 0x00, 0x00, 0x2F, 0x00), 0x00, 0x04, 0xAA),
			expErr: errLengthMismatch,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			m := &MessageServerHello{}
			assert.ErrorIs(t, m.Unmarshal(testCase.raw), testCase.expErr)
		})
	}
}

func TestMessageClientHelloRoundTrip(t *testing.T) {
	random := Random{GMTUnixTime: time.Unix(2000, 0)}

	cases := map[string]*MessageClientHello{
		"DTLS with cookie": {
			Version:            protocol.VersionDTLS1_2,
			Random:             random,
			Cookie:             []byte{0x01, 0x02, 0x03},
			CipherSuiteIDs:     []uint16{0x00A8, 0xC02B},
			CompressionMethods: []byte{0x00},
			Datagram:           true,
		},
		"TLS without cookie": {
			Version:            protocol.VersionTLS1_2,
			Random:             random,
			SessionID:          []byte{0x0A, 0x0B},
			CipherSuiteIDs:     []uint16{0x002F},
			CompressionMethods: []byte{0x00},
			Extensions:         []byte{0x00, 0x0A, 0x00, 0x00},
		},
	}

	for name, m := range cases {
		m := m
		t.Run(name, func(t *testing.T) {
			raw, err := m.Marshal()
			require.NoError(t, err)

			parsed := &MessageClientHello{Datagram: m.Datagram}
			require.NoError(t, parsed.Unmarshal(raw))

			if len(m.Cookie) == 0 {
				m.Cookie = parsed.Cookie
			}
			assert.Equal(t, m, parsed)
		})
	}
}

func TestMessageClientHelloInvalid(t *testing.T) {
	m := &MessageClientHello{
		Version:            protocol.VersionDTLS1_2,
		CipherSuiteIDs:     []uint16{0x00A8},
		CompressionMethods: []byte{0x00},
		Cookie:             make([]byte, 256),
		Datagram:           true,
	}
	_, err := m.Marshal()
	assert.ErrorIs(t, err, errCookieTooLong)

	parsed := &MessageClientHello{Datagram: true}
	assert.ErrorIs(t, parsed.Unmarshal(make([]byte, 5)), errBufferTooSmall)
}
