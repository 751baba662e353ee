package prf

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPSKPreMasterSecret(t *testing.T) {
	psk := []byte{0xAB, 0xC1, 0x23}

	assert.Equal(t, []byte{
		0x00, 0x03, 0x00, 0x00, 0x00,
		0x00, 0x03, 0xAB, 0xC1, 0x23,
	}, PSKPreMasterSecret(psk))
}

func TestMasterSecret(t *testing.T) {
	preMasterSecret := []byte{
		0x24, 0x72, 0xA6, 0x4A, 0x1D, 0x1E, 0xB9, 0x9A, 0x6B, 0x3E,
		0x2D, 0xAB, 0x2D, 0xE2, 0x40, 0x1A, 0x3C, 0x63, 0x60, 0xBC,
		0xD8, 0x05, 0x72, 0xE1, 0x2E, 0x6A, 0xA4, 0xC8, 0x2C, 0x36,
		0x4E, 0x2C,
	}
	clientRandom := []byte{
		0x80, 0x21, 0xEA, 0x04, 0x16, 0x35, 0xBF, 0xE2, 0x82, 0x1B,
		0x45, 0x9C, 0xF1, 0x1B, 0x25, 0x2B, 0x2A, 0xB3, 0x8C, 0x5C,
		0x9A, 0x81, 0x8F, 0x6B, 0xB1, 0x49, 0x39, 0xBC, 0x09, 0x8E,
		0x45, 0xB1,
	}
	serverRandom := []byte{
		0x6E, 0x45, 0xC2, 0x18, 0xA3, 0x7B, 0x95, 0xD0, 0x8B, 0x3C,
		0xC5, 0x76, 0x8C, 0x71, 0x8A, 0x31, 0x21, 0x14, 0x51, 0x1E,
		0xAF, 0xF3, 0x32, 0x6B, 0xD0, 0x1E, 0xB1, 0x45, 0xCC, 0x15,
		0x5D, 0x58,
	}

	masterSecret, err := MasterSecret(preMasterSecret, clientRandom, serverRandom, sha256.New)
	require.NoError(t, err)
	assert.Len(t, masterSecret, MasterSecretLength)

	// deterministic for fixed inputs
	again, err := MasterSecret(preMasterSecret, clientRandom, serverRandom, sha256.New)
	require.NoError(t, err)
	assert.Equal(t, masterSecret, again)
}

func TestVerifyData(t *testing.T) {
	masterSecret, err := hex.DecodeString(
		"916abf9da55973e13614ae0a3f5d3f37b023ba129aee02cc9134338127cd7049781c8e19fc1eb2a7387ac06ae237344c")
	require.NoError(t, err)
	transcript := []byte("handshake transcript stand-in")

	client, err := VerifyDataClient(masterSecret, transcript, sha256.New)
	require.NoError(t, err)
	server, err := VerifyDataServer(masterSecret, transcript, sha256.New)
	require.NoError(t, err)

	assert.Len(t, client, VerifyDataLength)
	assert.Len(t, server, VerifyDataLength)
	assert.NotEqual(t, client, server)
}

func TestPHashLength(t *testing.T) {
	for _, n := range []int{1, 12, 32, 48, 100} {
		out, err := PHash([]byte("secret"), []byte("seed"), n, sha256.New)
		require.NoError(t, err)
		assert.Len(t, out, n)
	}
}
