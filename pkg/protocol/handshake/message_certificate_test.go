package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCertificate(t *testing.T) {
	cases := map[string]struct {
		raw    []byte
		parsed *MessageCertificate
		expErr error
	}{
		"valid - empty chain": {
			raw:    []byte{0x00, 0x00, 0x00},
			parsed: &MessageCertificate{},
		},
		"valid - two certificates": {
			raw: []byte{
				0x00, 0x00, 0x0A,
				0x00, 0x00, 0x02, 0xAA, 0xBB,
				0x00, 0x00, 0x02, 0xCC, 0xDD,
			},
			parsed: &MessageCertificate{
				Certificate: [][]byte{{0xAA, 0xBB}, {0xCC, 0xDD}},
			},
		},
		"invalid - zero length entry": {
			raw: []byte{
				0x00, 0x00, 0x03,
				0x00, 0x00, 0x00,
			},
			expErr: errEmptyCertificate,
		},
		"invalid - entry length past buffer": {
			raw: []byte{
				0x00, 0x00, 0x04,
				0x00, 0x00, 0x04, 0xAA,
			},
			expErr: errBufferTooSmall,
		},
		"invalid - list length mismatch": {
			raw: []byte{
				0x00, 0x00, 0x09,
				0x00, 0x00, 0x02, 0xAA, 0xBB,
			},
			expErr: errLengthMismatch,
		},
		"invalid - too short": {
			raw:    []byte{0x00, 0x00},
			expErr: errBufferTooSmall,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			c := &MessageCertificate{}
			err := c.Unmarshal(testCase.raw)
			if testCase.expErr != nil {
				assert.ErrorIs(t, err, testCase.expErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.parsed, c)

			raw, err := c.Marshal()
			require.NoError(t, err)
			assert.Equal(t, testCase.raw, raw)
		})
	}
}
