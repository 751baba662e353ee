package tlshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzsec/tlshake/pkg/protocol"
	"github.com/quartzsec/tlshake/pkg/protocol/alert"
	"github.com/quartzsec/tlshake/pkg/protocol/handshake"
)

type capturedRecord struct {
	contentType protocol.ContentType
	data        []byte
}

// mockRecordProtocol captures everything the engine pushes into the
// record layer.
type mockRecordProtocol struct {
	sent        []capturedRecord
	delivered   int
	writeParams []SecurityParameters
	readParams  []SecurityParameters
	connects    int
	disconnects int
	sendErr     error
}

func (m *mockRecordProtocol) Send(contentType protocol.ContentType, data []byte) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, capturedRecord{contentType, append([]byte{}, data...)})

	return nil
}

func (m *mockRecordProtocol) SetWriteSecurityParameters(params SecurityParameters) error {
	m.writeParams = append(m.writeParams, params)

	return nil
}

func (m *mockRecordProtocol) SetReadSecurityParameters(params SecurityParameters) error {
	m.readParams = append(m.readParams, params)

	return nil
}

func (m *mockRecordProtocol) Connect()    { m.connects++ }
func (m *mockRecordProtocol) Disconnect() { m.disconnects++ }

func (m *mockRecordProtocol) lastAlert(t *testing.T) alert.Alert {
	t.Helper()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].contentType == protocol.ContentTypeAlert {
			a := alert.Alert{}
			require.NoError(t, a.Unmarshal(m.sent[i].data))

			return a
		}
	}
	t.Fatal("no alert was sent")

	return alert.Alert{}
}

func staticPSK(psk []byte) PSKCallback {
	return func([]byte) ([]byte, error) {
		return psk, nil
	}
}

func pskConfig() *Config {
	return &Config{
		PSK:             staticPSK([]byte{0xAB, 0xC1, 0x23}),
		PSKIdentityHint: []byte("tlshake-test"),
		CipherSuites:    []CipherSuiteID{TLS_PSK_WITH_AES_128_GCM_SHA256},
	}
}

func marshalMessage(t *testing.T, datagram bool, seq uint16, msg handshake.Message) []byte {
	t.Helper()
	container := handshake.Handshake{
		Header:  handshake.Header{Datagram: datagram, MessageSequence: seq},
		Message: msg,
	}
	data, err := container.Marshal()
	require.NoError(t, err)

	return data
}

func TestEngineConfigValidation(t *testing.T) {
	rec := &mockRecordProtocol{}

	cases := map[string]struct {
		record      RecordProtocol
		config      *Config
		server      bool
		wantErr     error
		wantSuccess bool
	}{
		"NilRecordProtocol": {
			record:  nil,
			config:  pskConfig(),
			wantErr: errRecordProtocolMissing,
		},
		"NilConfig": {
			record:  rec,
			config:  nil,
			wantErr: errConfigMissing,
		},
		"ServerWithoutCredentials": {
			record:  rec,
			config:  &Config{},
			server:  true,
			wantErr: errNoCredentials,
		},
		"CertificateWithoutKey": {
			record:  rec,
			config:  &Config{Certificates: [][]byte{{0x01}}},
			wantErr: errPrivateKeyMissing,
		},
		"ClientWithoutCredentials": {
			// a client can run anonymous ECDHE offers against a
			// certificate server
			record:      rec,
			config:      &Config{InsecureSkipVerify: true},
			wantSuccess: true,
		},
		"PSKClient": {
			record:      rec,
			config:      pskConfig(),
			wantSuccess: true,
		},
		"UnknownCipherSuite": {
			record:  rec,
			config:  &Config{PSK: staticPSK([]byte{1}), CipherSuites: []CipherSuiteID{0x1234}},
			wantErr: &invalidCipherSuiteError{0x1234},
		},
		"NonNegotiableCipherSuite": {
			record:  rec,
			config:  &Config{PSK: staticPSK([]byte{1}), CipherSuites: []CipherSuiteID{TLS_RSA_WITH_AES_128_CBC_SHA}},
			wantErr: &invalidCipherSuiteError{TLS_RSA_WITH_AES_128_CBC_SHA},
		},
		"PSKServerWithOnlyCertificateSuites": {
			record:  rec,
			config:  &Config{PSK: staticPSK([]byte{1}), CipherSuites: []CipherSuiteID{TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256}},
			server:  true,
			wantErr: errNoAvailableCipherSuites,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			var engine *Engine
			var err error
			if testCase.server {
				engine, err = NewServer(testCase.record, testCase.config)
			} else {
				engine, err = NewClient(testCase.record, testCase.config)
			}

			if testCase.wantSuccess {
				require.NoError(t, err)
				assert.NotNil(t, engine)
				assert.False(t, engine.Connected())
			} else {
				assert.ErrorIs(t, err, testCase.wantErr)
			}
		})
	}
}

func TestInitiateHandshakeSendsClientHello(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	fc := NewFlowContext()
	engine.InitiateHandshake(fc)
	require.NoError(t, fc.Err())

	require.Len(t, rec.sent, 1)
	assert.Equal(t, protocol.ContentTypeHandshake, rec.sent[0].contentType)

	parsed := handshake.Handshake{}
	require.NoError(t, parsed.Unmarshal(rec.sent[0].data))
	clientHello, ok := parsed.Message.(*handshake.MessageClientHello)
	require.True(t, ok)
	assert.True(t, clientHello.Version.Equal(protocol.VersionTLS1_2))
	assert.Empty(t, clientHello.Cookie)
	assert.Equal(t, []uint16{uint16(TLS_PSK_WITH_AES_128_GCM_SHA256)}, clientHello.CipherSuiteIDs)
	assert.Equal(t, clientStateHello, engine.current)
}

func TestInitiateHandshakeTwicePanics(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	engine.InitiateHandshake(NewFlowContext())
	assert.Panics(t, func() {
		engine.InitiateHandshake(NewFlowContext())
	})
}

func TestDisconnectedRejectsTraffic(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	buf := marshalMessage(t, false, 0, &handshake.MessageHelloRequest{})

	fc := NewFlowContext()
	engine.HandleHandshakeMessage(fc, buf, false)
	assert.ErrorIs(t, fc.Err(), errEngineClosed)

	fc = NewFlowContext()
	engine.HandleChangeCipherSpec(fc, []byte{0x01})
	assert.ErrorIs(t, fc.Err(), errEngineClosed)

	// timers are inert while disconnected
	fc = NewFlowContext()
	engine.HandleTimerEvent(fc)
	assert.NoError(t, fc.Err())
	assert.Empty(t, rec.sent)
}

func TestUnexpectedMessageLeavesStateUnchanged(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	engine.InitiateHandshake(NewFlowContext())
	sentBefore := len(rec.sent)

	buf := marshalMessage(t, false, 0, &handshake.MessageFinished{VerifyData: make([]byte, 12)})

	fc := NewFlowContext()
	engine.HandleHandshakeMessage(fc, buf, false)
	assert.ErrorIs(t, fc.Err(), errUnexpectedMessage)
	assert.Equal(t, clientStateHello, engine.current)

	sentAlert := rec.lastAlert(t)
	assert.Equal(t, alert.Fatal, sentAlert.Level)
	assert.Equal(t, alert.UnexpectedMessage, sentAlert.Description)
	assert.Len(t, rec.sent, sentBefore+1)
}

func TestMalformedMessageReported(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)
	engine.InitiateHandshake(NewFlowContext())

	cases := map[string][]byte{
		"Truncated":      {0x02},
		"LengthOverrun":  {0x02, 0x00, 0x00, 0x20, 0xAA},
		"DeclaredExcess": append([]byte{0x0e, 0x00, 0x00, 0x00}, 0xFF),
	}

	for name, buf := range cases {
		buf := buf
		t.Run(name, func(t *testing.T) {
			fc := NewFlowContext()
			engine.HandleHandshakeMessage(fc, buf, false)
			assert.Error(t, fc.Err())
			assert.Equal(t, clientStateHello, engine.current)
			sentAlert := rec.lastAlert(t)
			assert.Equal(t, alert.DecodeError, sentAlert.Description)
		})
	}
}

func TestUnexpectedChangeCipherSpec(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)
	engine.InitiateHandshake(NewFlowContext())

	fc := NewFlowContext()
	engine.HandleChangeCipherSpec(fc, []byte{0x01})
	assert.ErrorIs(t, fc.Err(), errUnexpectedChangeCipherSpec)
	assert.Equal(t, clientStateHello, engine.current)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	rec := &mockRecordProtocol{}
	engine, err := NewClient(rec, pskConfig())
	require.NoError(t, err)

	engine.InitiateHandshake(NewFlowContext())
	engine.Disconnect()
	assert.Equal(t, handshakeState(stateDisconnected), engine.current)

	engine.Disconnect()
	assert.Equal(t, handshakeState(stateDisconnected), engine.current)

	// the engine is reusable after a disconnect
	fc := NewFlowContext()
	engine.InitiateHandshake(fc)
	require.NoError(t, fc.Err())
	assert.Equal(t, clientStateHello, engine.current)
}
