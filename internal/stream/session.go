package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stress-monitor/esms/internal/audit"
	"github.com/stress-monitor/esms/internal/metrics"
	"github.com/stress-monitor/esms/internal/model"
)

// Session lifecycle states. Closed is terminal.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Default session timing, overridable via Options.
const (
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultClientTimeout     = 30 * time.Second
	DefaultPollInterval      = time.Second
)

// Conn is the outbound side of a client connection. Implementations must be
// safe for concurrent writers.
type Conn interface {
	WriteMessage(msg model.WsMessage) error
	WritePing() error
	WritePong(payload []byte) error
	Close() error
}

// Store is the session's view of the telemetry store: a shared read reference
// plus the client registry. The session never keeps a private copy of store
// state.
type Store interface {
	Latest() (model.Reading, bool)
	RegisterClient(id string)
	UnregisterClient(id string)
}

// Options configures a session. Zero fields take defaults.
type Options struct {
	HeartbeatInterval time.Duration
	ClientTimeout     time.Duration
	PollInterval      time.Duration
	Log               *slog.Logger
	Audit             *audit.Logger
}

// Session is the server-side state for one streaming client.
type Session struct {
	clientID string
	store    Store
	conn     Conn
	opts     Options
	log      *slog.Logger

	mu            sync.Mutex
	state         State
	lastLiveness  time.Time
	lastReadingID uuid.UUID
	hasReading    bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession creates a session in the Connecting state.
func NewSession(clientID string, st Store, conn Conn, opts Options) *Session {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if opts.ClientTimeout <= 0 {
		opts.ClientTimeout = DefaultClientTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		clientID:     clientID,
		store:        st,
		conn:         conn,
		opts:         opts,
		log:          log.With(slog.String("client_id", clientID)),
		state:        StateConnecting,
		lastLiveness: time.Now(),
		done:         make(chan struct{}),
	}
}

// ClientID returns the session's client identifier.
func (s *Session) ClientID() string { return s.clientID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start registers the client, sends the connection acknowledgment, enters
// Active, and launches the heartbeat and poll loops.
func (s *Session) Start() error {
	s.store.RegisterClient(s.clientID)

	ack, err := model.NewConnected(s.clientID)
	if err == nil {
		err = s.conn.WriteMessage(ack)
	}
	if err != nil {
		s.store.UnregisterClient(s.clientID)
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()

	metrics.ClientsConnected.Inc()
	s.opts.Audit.SessionEvent(audit.EventSessionConnected, s.clientID, "")
	s.log.Info("streaming client connected")

	s.wg.Add(2)
	go s.heartbeatLoop()
	go s.pollLoop()

	return nil
}

// heartbeatLoop probes client liveness on a fixed cadence.
func (s *Session) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.checkLiveness(time.Now())
		}
	}
}

// checkLiveness closes the session when the client has been silent beyond the
// timeout, otherwise emits a liveness probe.
func (s *Session) checkLiveness(now time.Time) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	silent := now.Sub(s.lastLiveness)
	s.mu.Unlock()

	if silent > s.opts.ClientTimeout {
		metrics.SessionTimeouts.Inc()
		s.opts.Audit.SessionEvent(audit.EventSessionTimeout, s.clientID, silent.String())
		s.log.Warn("heartbeat timeout", slog.Duration("silent", silent))
		s.close("heartbeat timeout")
		return
	}

	if err := s.conn.WritePing(); err != nil {
		s.close("transport error")
	}
}

// pollLoop checks the store for a new latest reading on a fixed cadence.
func (s *Session) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

// pollOnce pushes the latest reading when its identifier differs from the
// last one observed by this session. At most one push happens per distinct
// reading.
func (s *Session) pollOnce() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	reading, ok := s.store.Latest()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.hasReading && reading.ID == s.lastReadingID {
		s.mu.Unlock()
		return
	}
	s.lastReadingID = reading.ID
	s.hasReading = true
	s.mu.Unlock()

	msg, err := model.NewSensorUpdate(reading)
	if err != nil {
		s.log.Error("failed to encode sensor update", slog.Any("error", err))
		return
	}
	if err := s.conn.WriteMessage(msg); err != nil {
		s.close("transport error")
	}
}

// touch records evidence that the client is alive.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastLiveness = time.Now()
	s.mu.Unlock()
}

// HandlePong processes an inbound transport-level pong.
func (s *Session) HandlePong() {
	s.touch()
}

// HandlePing answers an inbound transport-level ping and refreshes liveness.
func (s *Session) HandlePing(payload []byte) error {
	s.touch()
	return s.conn.WritePong(payload)
}

// HandleMessage processes an inbound text payload. Any inbound traffic counts
// as liveness. A malformed payload is answered with an error notification to
// this client only; the session stays active.
func (s *Session) HandleMessage(data []byte) {
	s.touch()

	var msg model.WsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Warn("malformed client message", slog.Any("error", err))
		if notice, nerr := model.NewWsError("Invalid message format"); nerr == nil {
			if werr := s.conn.WriteMessage(notice); werr != nil {
				s.close("transport error")
			}
		}
		return
	}

	switch msg.Type {
	case model.KindPing:
		if err := s.conn.WriteMessage(model.NewPong()); err != nil {
			s.close("transport error")
		}
	case model.KindPong:
		// Liveness already refreshed above.
	default:
		// Other client chatter is ignored but still counts as liveness.
	}
}

// HandleClose processes a client-initiated close request.
func (s *Session) HandleClose() {
	s.close("client close")
}

// HandleTransportError closes the session after a transport failure.
func (s *Session) HandleTransportError(err error) {
	s.log.Debug("transport error", slog.Any("error", err))
	s.close("transport error")
}

// close performs the Closing → Closed transition exactly once, whichever path
// triggered it, and unregisters the client before the session reaches Closed.
func (s *Session) close(reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosing
		s.mu.Unlock()

		close(s.done)
		s.store.UnregisterClient(s.clientID)

		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()

		_ = s.conn.Close()
		metrics.ClientsConnected.Dec()
		s.opts.Audit.SessionEvent(audit.EventSessionClosed, s.clientID, reason)
		s.log.Info("streaming client disconnected", slog.String("reason", reason))
	})
}

// Wait blocks until both periodic loops have stopped.
func (s *Session) Wait() {
	s.wg.Wait()
}
