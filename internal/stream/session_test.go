package stream

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stress-monitor/esms/internal/model"
)

// fakeConn records outbound traffic and can be told to fail writes.
type fakeConn struct {
	mu       sync.Mutex
	messages []model.WsMessage
	pings    int
	pongs    [][]byte
	closed   int
	writeErr error
}

func (c *fakeConn) WriteMessage(msg model.WsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *fakeConn) WritePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.pings++
	return nil
}

func (c *fakeConn) WritePong(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pongs = append(c.pongs, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConn) sent() []model.WsMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.WsMessage(nil), c.messages...)
}

func (c *fakeConn) byType(kind string) []model.WsMessage {
	var out []model.WsMessage
	for _, m := range c.sent() {
		if m.Type == kind {
			out = append(out, m)
		}
	}
	return out
}

// fakeStore tracks the registry and serves a settable latest reading.
type fakeStore struct {
	mu           sync.Mutex
	latest       model.Reading
	hasLatest    bool
	registered   []string
	unregistered []string
}

func (s *fakeStore) Latest() (model.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

func (s *fakeStore) setLatest(r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
	s.hasLatest = true
}

func (s *fakeStore) RegisterClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, id)
}

func (s *fakeStore) UnregisterClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregistered = append(s.unregistered, id)
}

func (s *fakeStore) unregisterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unregistered)
}

func quietOpts() Options {
	return Options{
		// Long intervals keep the background loops out of the way; tests
		// drive checkLiveness and pollOnce directly.
		HeartbeatInterval: time.Hour,
		ClientTimeout:     30 * time.Second,
		PollInterval:      time.Hour,
		Log:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func startSession(t *testing.T) (*Session, *fakeConn, *fakeStore) {
	t.Helper()
	conn := &fakeConn{}
	st := &fakeStore{}
	s := NewSession("client-1", st, conn, quietOpts())
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		s.close("test cleanup")
		s.Wait()
	})
	return s, conn, st
}

func TestStart_RegistersAndAcknowledges(t *testing.T) {
	s, conn, st := startSession(t)

	assert.Equal(t, StateActive, s.State())
	require.Equal(t, []string{"client-1"}, st.registered)

	acks := conn.byType(model.KindConnected)
	require.Len(t, acks, 1)

	var data model.ConnectedData
	require.NoError(t, json.Unmarshal(acks[0].Data, &data))
	assert.Equal(t, "client-1", data.ClientID)
}

func TestStart_AckFailureUnregisters(t *testing.T) {
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	st := &fakeStore{}
	s := NewSession("client-1", st, conn, quietOpts())

	require.Error(t, s.Start())
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, st.unregisterCount())
}

func TestCheckLiveness_TimeoutClosesOnce(t *testing.T) {
	s, conn, st := startSession(t)

	deadline := time.Now().Add(time.Minute)
	s.checkLiveness(deadline)
	s.checkLiveness(deadline)

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, conn.closed)
	assert.Equal(t, 1, st.unregisterCount())
}

func TestCheckLiveness_ProbesWhileAlive(t *testing.T) {
	s, conn, _ := startSession(t)

	s.checkLiveness(time.Now())
	s.checkLiveness(time.Now())

	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 2, conn.pings)
}

func TestHandlePong_RefreshesLiveness(t *testing.T) {
	s, _, _ := startSession(t)

	// Backdate liveness past the timeout, then let a pong rescue the session.
	s.mu.Lock()
	s.lastLiveness = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	s.HandlePong()
	s.checkLiveness(time.Now())

	assert.Equal(t, StateActive, s.State())
}

func TestPollOnce_PushesEachReadingOnce(t *testing.T) {
	s, conn, st := startSession(t)

	// No reading yet: nothing to push.
	s.pollOnce()
	assert.Empty(t, conn.byType(model.KindSensorUpdate))

	first := model.NewReading(22, 50, 150, 70)
	st.setLatest(first)

	s.pollOnce()
	s.pollOnce()
	require.Len(t, conn.byType(model.KindSensorUpdate), 1)

	second := model.NewReading(23, 51, 160, 72)
	st.setLatest(second)

	s.pollOnce()
	updates := conn.byType(model.KindSensorUpdate)
	require.Len(t, updates, 2)

	var got model.Reading
	require.NoError(t, json.Unmarshal(updates[1].Data, &got))
	assert.Equal(t, second.ID, got.ID)
}

func TestHandleMessage_MalformedKeepsSessionActive(t *testing.T) {
	s, conn, _ := startSession(t)

	s.HandleMessage([]byte("{not json"))

	assert.Equal(t, StateActive, s.State())
	errs := conn.byType(model.KindError)
	require.Len(t, errs, 1)

	var data model.ErrorData
	require.NoError(t, json.Unmarshal(errs[0].Data, &data))
	assert.Equal(t, "Invalid message format", data.Message)
}

func TestHandleMessage_JSONPingAnsweredWithPong(t *testing.T) {
	s, conn, _ := startSession(t)

	s.HandleMessage([]byte(`{"type":"Ping"}`))

	require.Len(t, conn.byType(model.KindPong), 1)
	assert.Equal(t, StateActive, s.State())
}

func TestHandlePing_EchoesPayload(t *testing.T) {
	s, conn, _ := startSession(t)

	require.NoError(t, s.HandlePing([]byte("probe")))
	require.Len(t, conn.pongs, 1)
	assert.Equal(t, []byte("probe"), conn.pongs[0])
}

func TestClose_ExactlyOnce(t *testing.T) {
	s, conn, st := startSession(t)

	s.HandleClose()
	s.HandleTransportError(errors.New("reset by peer"))
	s.HandleClose()

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, conn.closed)
	assert.Equal(t, 1, st.unregisterCount())

	s.Wait()
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateConnecting: "connecting",
		StateActive:     "active",
		StateClosing:    "closing",
		StateClosed:     "closed",
		State(99):       "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}
