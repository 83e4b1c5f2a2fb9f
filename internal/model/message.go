package model

import "encoding/json"

// Websocket message kinds. The wire shape is a tagged envelope:
// {"type": "...", "data": {...}} with data omitted for the control kinds.
const (
	KindSensorUpdate = "SensorUpdate"
	KindConnected    = "Connected"
	KindError        = "Error"
	KindPing         = "Ping"
	KindPong         = "Pong"
)

// WsMessage is the websocket message envelope exchanged with streaming
// clients.
type WsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectedData carries the acknowledged client ID.
type ConnectedData struct {
	ClientID string `json:"client_id"`
}

// ErrorData carries a client-facing error description.
type ErrorData struct {
	Message string `json:"message"`
}

// NewSensorUpdate wraps a reading in a SensorUpdate envelope.
func NewSensorUpdate(r Reading) (WsMessage, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return WsMessage{}, err
	}
	return WsMessage{Type: KindSensorUpdate, Data: data}, nil
}

// NewConnected builds the connection acknowledgment for a client.
func NewConnected(clientID string) (WsMessage, error) {
	data, err := json.Marshal(ConnectedData{ClientID: clientID})
	if err != nil {
		return WsMessage{}, err
	}
	return WsMessage{Type: KindConnected, Data: data}, nil
}

// NewWsError builds an error notification envelope.
func NewWsError(message string) (WsMessage, error) {
	data, err := json.Marshal(ErrorData{Message: message})
	if err != nil {
		return WsMessage{}, err
	}
	return WsMessage{Type: KindError, Data: data}, nil
}

// NewPing returns the liveness probe envelope.
func NewPing() WsMessage {
	return WsMessage{Type: KindPing}
}

// NewPong returns the liveness probe response envelope.
func NewPong() WsMessage {
	return WsMessage{Type: KindPong}
}
