package repositories

import (
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeMessage_SkipsUnknownFields(t *testing.T) {
	req := require.New(t)
	msg := domain.Message{
		ID:        7,
		Content:   "hello",
		Sender:    "alice",
		Timestamp: time.Unix(0, 1_700_000_000_000_000_000).UTC(),
		Kind:      domain.KindChat,
	}

	b := encodeMessage(msg)
	b = protowire.AppendTag(b, 99, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 12345)

	decoded, err := decodeMessage(b)
	req.NoError(err)
	req.Equal(msg, decoded)
}

func TestDecodeMessage_RejectsTruncatedInput(t *testing.T) {
	req := require.New(t)
	b := encodeMessage(domain.Message{ID: 1, Content: "hello", Kind: domain.KindChat})

	_, err := decodeMessage(b[:len(b)-3])
	req.Error(err)
}

func TestDecodeMessage_RejectsUnknownKind(t *testing.T) {
	req := require.New(t)
	b := encodeMessage(domain.Message{ID: 1, Content: "hello", Kind: "SHOUT"})

	_, err := decodeMessage(b)
	req.Error(err)
}

func TestDecodeIdentity_ZeroCreatedAtStaysZero(t *testing.T) {
	req := require.New(t)
	identity := domain.Identity{ID: 3, Username: "dave", Online: true}

	decoded, err := decodeIdentity(encodeIdentity(identity))
	req.NoError(err)
	req.Equal(identity, decoded)
	req.True(decoded.CreatedAt.IsZero())
}
