package model

import (
	"encoding/json"
	"testing"
)

func TestNewSensorUpdate_Envelope(t *testing.T) {
	r := NewReading(22.5, 50, 150, 70)
	msg, err := NewSensorUpdate(r)
	if err != nil {
		t.Fatalf("NewSensorUpdate: %v", err)
	}
	if msg.Type != KindSensorUpdate {
		t.Errorf("Type = %q, want %q", msg.Type, KindSensorUpdate)
	}

	var got Reading
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("data ID = %s, want %s", got.ID, r.ID)
	}
}

func TestNewConnected_CarriesClientID(t *testing.T) {
	msg, err := NewConnected("client-42")
	if err != nil {
		t.Fatalf("NewConnected: %v", err)
	}
	if msg.Type != KindConnected {
		t.Errorf("Type = %q, want %q", msg.Type, KindConnected)
	}

	var data ConnectedData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.ClientID != "client-42" {
		t.Errorf("ClientID = %q, want client-42", data.ClientID)
	}
}

func TestControlEnvelopes_OmitData(t *testing.T) {
	for _, msg := range []WsMessage{NewPing(), NewPong()} {
		raw, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal %s: %v", msg.Type, err)
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			t.Fatalf("unmarshal %s: %v", msg.Type, err)
		}
		if _, ok := fields["data"]; ok {
			t.Errorf("%s envelope carries a data field: %s", msg.Type, raw)
		}
	}
}

func TestNewWsError(t *testing.T) {
	msg, err := NewWsError("Invalid message format")
	if err != nil {
		t.Fatalf("NewWsError: %v", err)
	}
	if msg.Type != KindError {
		t.Errorf("Type = %q, want %q", msg.Type, KindError)
	}

	var data ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Message != "Invalid message format" {
		t.Errorf("Message = %q", data.Message)
	}
}
