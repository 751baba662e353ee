package tlshake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

func TestHandshakeCacheOrderAndExclusions(t *testing.T) {
	cache := handshakeCache{}

	cache.push([]byte{0x01}, 0, handshake.TypeClientHello, true)
	cache.push([]byte{0x02}, 0, handshake.TypeHelloVerifyRequest, false)
	cache.push([]byte{0x03}, 1, handshake.TypeServerHello, false)
	cache.push([]byte{0x04}, 2, handshake.TypeHelloRequest, false)
	cache.push([]byte{0x05}, 2, handshake.TypeFinished, true)

	// cookie demands and hello requests never enter the transcript
	assert.Equal(t, []byte{0x01, 0x03, 0x05}, cache.bytes())

	cache.reset()
	assert.Empty(t, cache.bytes())
}

func TestHandshakeCacheCopiesData(t *testing.T) {
	cache := handshakeCache{}

	data := []byte{0xAA, 0xBB}
	cache.push(data, 0, handshake.TypeClientHello, true)
	data[0] = 0x00

	assert.Equal(t, []byte{0xAA, 0xBB}, cache.bytes())
}
