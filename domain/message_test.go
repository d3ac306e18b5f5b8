package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessage_WithDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name        string
		msg         Message
		wantContent string
		wantAt      time.Time
	}{
		{"empty content and timestamp", Message{Sender: "alice"}, " ", now},
		{"content kept", Message{Sender: "alice", Content: "hi"}, "hi", now},
		{"timestamp kept", Message{Sender: "alice", Timestamp: earlier}, " ", earlier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got := tt.msg.WithDefaults(now)
			req.Equal(tt.wantContent, got.Content)
			req.Equal(tt.wantAt, got.Timestamp)
		})
	}
}

func TestMessage_IsPrivateBetween(t *testing.T) {
	req := require.New(t)
	msg := Message{Sender: "alice", Receiver: "bob", Kind: KindPrivateMessage}

	req.True(msg.IsPrivateBetween("alice", "bob"))
	req.True(msg.IsPrivateBetween("bob", "alice"))
	req.False(msg.IsPrivateBetween("alice", "carol"))

	msg.Kind = KindChat
	req.False(msg.IsPrivateBetween("alice", "bob"))
}

func TestDestination_Owner(t *testing.T) {
	req := require.New(t)

	owner, ok := PrivateDestination("bob").Owner()
	req.True(ok)
	req.Equal("bob", owner)

	_, ok = Broadcast.Owner()
	req.False(ok)
}
