package elliptic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedSecret(t *testing.T) {
	for name, curve := range map[string]Curve{
		"X25519": X25519,
		"P256":   P256,
		"P384":   P384,
	} {
		curve := curve
		t.Run(name, func(t *testing.T) {
			alice, err := GenerateKeypair(curve)
			require.NoError(t, err)
			bob, err := GenerateKeypair(curve)
			require.NoError(t, err)

			aliceSecret, err := SharedSecret(bob.PublicKey, alice)
			require.NoError(t, err)
			bobSecret, err := SharedSecret(alice.PublicKey, bob)
			require.NoError(t, err)

			assert.Equal(t, aliceSecret, bobSecret)
			assert.NotEmpty(t, aliceSecret)
		})
	}
}

func TestGenerateKeypairInvalidCurve(t *testing.T) {
	_, err := GenerateKeypair(Curve(0x0001))
	assert.ErrorIs(t, err, errInvalidNamedCurve)
}
