// Package events contains event contract definitions for WebSocket
// communication in the Demand Pulse system.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDataRefresh announces that the dataset cache was cleared
	// and clients should re-fetch what they display.
	MessageTypeDataRefresh MessageType = "data:refresh"

	// System messages
	MessageTypeSystemStatus MessageType = "system:status"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// RefreshEvent is the payload of a data:refresh message.
type RefreshEvent struct {
	Cleared     int       `json:"cleared"`
	RequestedAt time.Time `json:"requested_at"`
}

// StatusEvent is the payload of a system:status message.
type StatusEvent struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime,omitempty"`
}
