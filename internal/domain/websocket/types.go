// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Board events (server -> client)
	EventTypeBoardSnapshot   EventType = "board:snapshot"
	EventTypeBoardUpdated    EventType = "board:updated"
	EventTypeBoardRolledBack EventType = "board:rolled_back"
	EventTypeBoardReloaded   EventType = "board:reloaded"
	EventTypeMoveResult      EventType = "board:move_result"
	EventTypeColumnToggled   EventType = "column:toggled"

	// Board requests (client -> server)
	EventTypeBoardGet     EventType = "board:get"
	EventTypeBoardFilter  EventType = "board:filter"
	EventTypeBoardMove    EventType = "board:move"
	EventTypeColumnToggle EventType = "column:toggle"

	// Session events
	EventTypeForceLogout EventType = "session:force_logout"

	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      json.RawMessage        `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

type ChannelType string

const (
	ChannelPipeline ChannelType = "pipeline"
	ChannelSystem   ChannelType = "system"
)

type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ColumnToggleRequest struct {
	Column    string `json:"column"`
	Collapsed *bool  `json:"collapsed,omitempty"`
}

type ColumnToggledData struct {
	Column    string `json:"column"`
	Collapsed bool   `json:"collapsed"`
}

type SessionEventData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

// NewMessage marshals data into a message with a fresh ulid id.
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	msg := &WSMessage{
		Type:      eventType,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			msg.Data = raw
		}
	}
	return msg
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Decode unmarshals the payload into v.
func (m *WSMessage) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
