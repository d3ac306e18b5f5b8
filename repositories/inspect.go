package repositories

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Record is a human readable view of one raw badger entry.
type Record struct {
	Key    string    `json:"key"`
	Type   string    `json:"type"`
	At     time.Time `json:"at,omitzero"`
	Detail string    `json:"detail"`
}

// Describe decodes a raw entry written by this package. Unknown keys are
// reported as RAW with their size.
func Describe(key string, val []byte) Record {
	record := Record{Key: key, Type: "RAW", Detail: fmt.Sprintf("Size: %d bytes", len(val))}
	switch {
	case strings.HasPrefix(key, userIDPrefix):
		identity, err := decodeIdentity(val)
		if err != nil {
			record.Detail = "Error: " + err.Error()
			return record
		}
		record.Type = "USER"
		record.At = identity.CreatedAt
		record.Detail = fmt.Sprintf("%s <%s> online=%t", identity.Username, identity.Email, identity.Online)
	case strings.HasPrefix(key, userNamePrefix):
		record.Type = "USERNAME"
		if len(val) == 8 {
			record.Detail = fmt.Sprintf("-> user %d", int64(binary.BigEndian.Uint64(val)))
		}
	case strings.HasPrefix(key, messagePrefix),
		strings.HasPrefix(key, publicPrefix),
		strings.HasPrefix(key, privatePrefix):
		msg, err := decodeMessage(val)
		if err != nil {
			record.Detail = "Error: " + err.Error()
			return record
		}
		record.Type = string(msg.Kind)
		record.At = msg.Timestamp
		route := msg.Sender
		if msg.Receiver != "" {
			route += " -> " + msg.Receiver
		}
		record.Detail = fmt.Sprintf("#%d %s: %s", msg.ID, route, msg.Content)
	case strings.HasPrefix(key, "seq:"):
		record.Type = "SEQUENCE"
	}
	return record
}
