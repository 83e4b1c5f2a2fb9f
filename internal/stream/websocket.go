package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stress-monitor/esms/internal/model"
)

// writeWait bounds how long a single outbound frame may take.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin; access control is out of scope.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsConn adapts a gorilla websocket connection to the Conn interface. The
// mutex serializes writers: the heartbeat loop, the poll loop, and inbound
// handlers all write.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteMessage(msg model.WsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) WritePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) WritePong(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PongMessage, payload)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// ServeWS upgrades an HTTP request to a websocket connection and runs a
// streaming session until the client disconnects. It blocks for the lifetime
// of the connection.
func ServeWS(w http.ResponseWriter, r *http.Request, st Store, opts Options) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	// Clear any server-level read deadline inherited from the upgrade; the
	// session's heartbeat timeout owns dead-peer detection.
	_ = conn.SetReadDeadline(time.Time{})

	clientID := uuid.NewString()
	session := NewSession(clientID, st, &wsConn{conn: conn}, opts)

	conn.SetPingHandler(func(appData string) error {
		return session.HandlePing([]byte(appData))
	})
	conn.SetPongHandler(func(string) error {
		session.HandlePong()
		return nil
	})

	if err := session.Start(); err != nil {
		log.Warn("failed to start streaming session",
			slog.String("client_id", clientID), slog.Any("error", err))
		_ = conn.Close()
		return
	}

	// Read pump: control frames are dispatched by the handlers above,
	// text frames go to the session.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				session.HandleClose()
			} else {
				session.HandleTransportError(err)
			}
			return
		}
		session.HandleMessage(data)
	}
}
