package repositories

import (
	"fmt"
	"time"

	"chat-relay/domain"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored as protobuf wire messages written field by field.
// Field numbers are part of the on-disk format and must never be reused.
const (
	userFieldID           protowire.Number = 1
	userFieldUsername     protowire.Number = 2
	userFieldPasswordHash protowire.Number = 3
	userFieldEmail        protowire.Number = 4
	userFieldOnline       protowire.Number = 5
	userFieldCreatedAt    protowire.Number = 6
)

const (
	messageFieldID        protowire.Number = 1
	messageFieldContent   protowire.Number = 2
	messageFieldSender    protowire.Number = 3
	messageFieldReceiver  protowire.Number = 4
	messageFieldColor     protowire.Number = 5
	messageFieldTimestamp protowire.Number = 6
	messageFieldKind      protowire.Number = 7
)

func encodeIdentity(identity domain.Identity) []byte {
	var b []byte
	b = appendVarint(b, userFieldID, uint64(identity.ID))
	b = appendString(b, userFieldUsername, identity.Username)
	b = appendString(b, userFieldPasswordHash, identity.PasswordHash)
	b = appendString(b, userFieldEmail, identity.Email)
	b = appendVarint(b, userFieldOnline, protowire.EncodeBool(identity.Online))
	b = appendTime(b, userFieldCreatedAt, identity.CreatedAt)
	return b
}

func decodeIdentity(b []byte) (domain.Identity, error) {
	var identity domain.Identity
	err := consumeFields(b, func(num protowire.Number, v fieldValue) {
		switch num {
		case userFieldID:
			identity.ID = int64(v.varint)
		case userFieldUsername:
			identity.Username = v.str
		case userFieldPasswordHash:
			identity.PasswordHash = v.str
		case userFieldEmail:
			identity.Email = v.str
		case userFieldOnline:
			identity.Online = protowire.DecodeBool(v.varint)
		case userFieldCreatedAt:
			identity.CreatedAt = time.Unix(0, int64(v.varint)).UTC()
		}
	})
	return identity, err
}

func encodeMessage(msg domain.Message) []byte {
	var b []byte
	b = appendVarint(b, messageFieldID, uint64(msg.ID))
	b = appendString(b, messageFieldContent, msg.Content)
	b = appendString(b, messageFieldSender, msg.Sender)
	b = appendString(b, messageFieldReceiver, msg.Receiver)
	b = appendString(b, messageFieldColor, msg.Color)
	b = appendTime(b, messageFieldTimestamp, msg.Timestamp)
	b = appendString(b, messageFieldKind, string(msg.Kind))
	return b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var msg domain.Message
	err := consumeFields(b, func(num protowire.Number, v fieldValue) {
		switch num {
		case messageFieldID:
			msg.ID = int64(v.varint)
		case messageFieldContent:
			msg.Content = v.str
		case messageFieldSender:
			msg.Sender = v.str
		case messageFieldReceiver:
			msg.Receiver = v.str
		case messageFieldColor:
			msg.Color = v.str
		case messageFieldTimestamp:
			msg.Timestamp = time.Unix(0, int64(v.varint)).UTC()
		case messageFieldKind:
			msg.Kind = domain.MessageKind(v.str)
		}
	})
	if err != nil {
		return domain.Message{}, err
	}
	if !msg.Kind.Valid() {
		return domain.Message{}, fmt.Errorf("decode message %d: unknown kind %q", msg.ID, msg.Kind)
	}
	return msg, nil
}

type fieldValue struct {
	varint uint64
	str    string
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	return appendVarint(b, num, uint64(t.UnixNano()))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// consumeFields walks a wire message and hands every varint or bytes field to visit.
// Unknown fields of other wire types are skipped.
func consumeFields(b []byte, visit func(protowire.Number, fieldValue)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, fieldValue{varint: v})
			b = b[n:]
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, fieldValue{str: s})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
