// Package ws is the realtime transport: one gorilla websocket per client,
// JSON action frames in, delivery frames out.
package ws

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionJoin          Action = "join"
	ActionSendBroadcast Action = "send-broadcast"
	ActionSendPrivate   Action = "send-private"
	ActionTyping        Action = "typing"
)

// Frame is what a client sends.
type Frame struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Username string `json:"username"`
}

// SendPayload carries send-broadcast, send-private and typing.
// Sender may be omitted; when present it must be the bound username.
type SendPayload struct {
	Sender    string     `json:"sender,omitempty"`
	Receiver  string     `json:"receiver,omitempty"`
	Content   string     `json:"content"`
	Color     string     `json:"color,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ErrorFrame answers a frame that could not be handled. The connection stays open.
type ErrorFrame struct {
	Error string `json:"error"`
}

// OutcomeFrame tells the sender its message was dropped.
type OutcomeFrame struct {
	Action  Action `json:"action"`
	Outcome string `json:"outcome"`
}
