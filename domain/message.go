// Package domain contains core concepts of the chat system.
// This file defines Message values and the defaulting rules applied before persistence.
// Messages are immutable once persisted.
package domain

import (
	"math"
	"time"
)

type MessageKind string

const (
	KindChat           MessageKind = "CHAT"
	KindPrivateMessage MessageKind = "PRIVATE_MESSAGE"
	KindJoin           MessageKind = "JOIN"
	KindLeave          MessageKind = "LEAVE"
	KindTyping         MessageKind = "TYPING"
)

// DefaultContent replaces a missing or empty content.
const DefaultContent = " "

// Timestamps are stored as nanoseconds since the epoch, so only the int64 range is representable.
var (
	MinTimestamp = time.Unix(0, math.MinInt64).UTC()
	MaxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// TimestampInRange reports whether t survives a round trip through UnixNano.
func TimestampInRange(t time.Time) bool {
	return !t.Before(MinTimestamp) && !t.After(MaxTimestamp)
}

func (k MessageKind) Valid() bool {
	switch k {
	case KindChat, KindPrivateMessage, KindJoin, KindLeave, KindTyping:
		return true
	}
	return false
}

// Message represents a chat event routed between participants.
// ID is zero until the message has been persisted.
type Message struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	Sender    string      `json:"sender"`
	Receiver  string      `json:"receiver,omitempty"`
	Color     string      `json:"color,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"messageType"`
}

// WithDefaults returns a copy where the zero timestamp is replaced by now
// and empty content by DefaultContent.
func (m Message) WithDefaults(now time.Time) Message {
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	if m.Content == "" {
		m.Content = DefaultContent
	}
	return m
}

// IsPrivateBetween reports whether m is a private message exchanged by a and b, in any direction.
func (m Message) IsPrivateBetween(a, b string) bool {
	if m.Kind != KindPrivateMessage {
		return false
	}
	return (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
}
