package tlshake

import (
	"github.com/quartzsec/tlshake/pkg/protocol"
)

type flightRecord struct {
	contentType protocol.ContentType
	data        []byte
}

// flight retains the exact bytes of the records sent by the current
// state so duplicates and timer expiries can be answered verbatim,
// without re-deriving any cryptographic material.
type flight struct {
	records []flightRecord

	// retransmits counts timer driven resends against the configured
	// budget.
	retransmits int

	// resentOnce is set after a duplicate driven resend and cleared on
	// the next timer tick, so one timer period produces at most one
	// resend.
	resentOnce bool
}

func (f *flight) add(contentType protocol.ContentType, data []byte) {
	f.records = append(f.records, flightRecord{contentType, append([]byte{}, data...)})
}

func (f *flight) empty() bool {
	return len(f.records) == 0
}

func (f *flight) reset() {
	f.records = nil
	f.retransmits = 0
	f.resentOnce = false
}
