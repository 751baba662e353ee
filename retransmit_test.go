package tlshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzsec/tlshake/pkg/protocol/alert"
)

func TestTimerRetransmissionBudget(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	engine.InitiateHandshake(NewFlowContext())
	require.Len(t, rec.sent, 1)
	original := rec.sent[0]

	// three timer expiries resend the flight byte for byte
	for i := 1; i <= defaultMaximumRetransmits; i++ {
		fc := NewFlowContext()
		engine.HandleTimerEvent(fc)
		require.NoError(t, fc.Err())
		require.Len(t, rec.sent, 1+i)
		assert.Equal(t, original.contentType, rec.sent[i].contentType)
		assert.Equal(t, original.data, rec.sent[i].data)
		assert.Equal(t, clientStateHello, engine.current)
	}

	// the next expiry abandons the handshake
	fc := NewFlowContext()
	engine.HandleTimerEvent(fc)
	assert.ErrorIs(t, fc.Err(), errRetransmitBudgetExhausted)
	assert.Equal(t, handshakeState(stateDisconnected), engine.current)

	sentAlert := rec.lastAlert(t)
	assert.Equal(t, alert.Fatal, sentAlert.Level)
	assert.Equal(t, alert.HandshakeFailure, sentAlert.Description)
}

func TestDuplicateResendsFlightVerbatim(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	engine.InitiateHandshake(NewFlowContext())
	require.Len(t, rec.sent, 1)
	original := rec.sent[0]

	fc := NewFlowContext()
	engine.HandleHandshakeMessage(fc, nil, true)
	require.NoError(t, fc.Err())
	require.Len(t, rec.sent, 2)
	assert.Equal(t, original.data, rec.sent[1].data)
	assert.Equal(t, clientStateHello, engine.current)

	// the duplicate driven resend satisfied this timer period
	fc = NewFlowContext()
	engine.HandleTimerEvent(fc)
	require.NoError(t, fc.Err())
	assert.Len(t, rec.sent, 2)
	assert.Equal(t, 0, engine.flight.retransmits)

	// the period after that retransmits again
	fc = NewFlowContext()
	engine.HandleTimerEvent(fc)
	require.NoError(t, fc.Err())
	require.Len(t, rec.sent, 3)
	assert.Equal(t, original.data, rec.sent[2].data)
	assert.Equal(t, 1, engine.flight.retransmits)
}

func TestTimerWithoutFlightIsIgnored(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewServer(rec, pskConfig())
	require.NoError(t, err)

	// the server's start state has nothing to retransmit
	engine.InitiateHandshake(NewFlowContext())
	for i := 0; i < defaultMaximumRetransmits+2; i++ {
		fc := NewFlowContext()
		engine.HandleTimerEvent(fc)
		require.NoError(t, fc.Err())
	}
	assert.Empty(t, rec.sent)
	assert.Equal(t, serverStateStart, engine.current)
}
