package tlshake

import (
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

type handshakeCacheItem struct {
	typ             handshake.Type
	isLocal         bool
	messageSequence uint16
	data            []byte
}

// handshakeCache accumulates the transcript, the exact bytes of every
// handshake message sent and received, in wire order. HelloRequest and
// HelloVerifyRequest never enter it, and it is reset when a cookie
// exchange restarts the hello round trip.
type handshakeCache struct {
	cache []handshakeCacheItem
}

func (c *handshakeCache) push(data []byte, messageSequence uint16, typ handshake.Type, isLocal bool) {
	if !typ.IncludedInTranscript() {
		return
	}
	c.cache = append(c.cache, handshakeCacheItem{
		typ:             typ,
		isLocal:         isLocal,
		messageSequence: messageSequence,
		data:            append([]byte{}, data...),
	})
}

// bytes merges the cached messages in arrival order.
func (c *handshakeCache) bytes() []byte {
	out := []byte{}
	for i := range c.cache {
		out = append(out, c.cache[i].data...)
	}

	return out
}

func (c *handshakeCache) reset() {
	c.cache = nil
}
