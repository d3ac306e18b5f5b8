package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var errConnectionClosed = fmt.Errorf("connection closed")

// session is one websocket connection. The read loop handles frames in order;
// only the write loop touches the connection for data frames.
type session struct {
	id      string
	conn    *websocket.Conn
	sink    *sink.ConnectionSink
	replies chan any
	limiter *rate.Limiter
	binder  services.ISessionBinder
	router  services.IMessageRouter
	cfg     Config
	log     *slog.Logger

	principal     domain.Identity
	authenticated bool
}

func (s *session) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.writeLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		deadline := time.Now().Add(s.cfg.WriteTimeout)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		return s.conn.Close()
	})
	err := g.Wait()
	if errors.Is(err, errConnectionClosed) {
		return nil
	}
	return err
}

func (s *session) readLoop(ctx context.Context) error {
	s.conn.SetReadLimit(s.cfg.MaxFrameBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Websocket read failed", "error", err)
			}
			return errConnectionClosed
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

		if !s.limiter.Allow() {
			s.fail(errors.ErrRateLimited)
			continue
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.fail(errors.ErrInvalidPayload)
			continue
		}
		if err := s.handle(ctx, frame); err != nil {
			s.fail(err)
		}
	}
}

func (s *session) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery := <-s.sink.Deliveries:
			if err := s.write(delivery); err != nil {
				return err
			}
		case reply := <-s.replies:
			if err := s.write(reply); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return err
			}
		}
	}
}

func (s *session) write(v any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *session) handle(ctx context.Context, frame Frame) error {
	switch frame.Action {
	case ActionJoin:
		var payload JoinPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return err
		}
		return s.join(ctx, strings.TrimSpace(payload.Username))
	case ActionSendBroadcast, ActionSendPrivate, ActionTyping:
		var payload SendPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return err
		}
		return s.send(ctx, frame.Action, payload)
	default:
		return fmt.Errorf("%w: unknown action %q", errors.ErrInvalidInput, frame.Action)
	}
}

// join binds the connection. An authenticated connection may only join as its principal.
func (s *session) join(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", errors.ErrInvalidInput)
	}
	if s.authenticated && s.principal.Username != username {
		return errors.ErrSenderMismatch
	}
	_, err := s.binder.Bind(ctx, s.id, username)
	return err
}

func (s *session) send(ctx context.Context, action Action, payload SendPayload) error {
	sender, ok := s.binder.Username(s.id)
	if !ok {
		return errors.ErrNotBound
	}
	if payload.Sender != "" && payload.Sender != sender {
		return errors.ErrSenderMismatch
	}
	msg := domain.Message{
		Sender:   sender,
		Receiver: strings.TrimSpace(payload.Receiver),
		Content:  payload.Content,
		Color:    payload.Color,
	}
	if payload.Timestamp != nil {
		msg.Timestamp = *payload.Timestamp
	}

	var (
		result services.RouteResult
		err    error
	)
	switch action {
	case ActionSendBroadcast:
		msg.Kind = domain.KindChat
		result, err = s.router.HandleBroadcast(ctx, msg)
	case ActionSendPrivate:
		if msg.Receiver == "" {
			return fmt.Errorf("%w: receiver is required", errors.ErrInvalidInput)
		}
		msg.Kind = domain.KindPrivateMessage
		result, err = s.router.HandlePrivate(ctx, msg)
	case ActionTyping:
		msg.Kind = domain.KindTyping
		result, err = s.router.HandleTyping(ctx, msg)
	}
	if err != nil {
		return err
	}
	if result.Outcome.Dropped() {
		s.reply(OutcomeFrame{Action: action, Outcome: result.Outcome.String()})
	}
	return nil
}

func (s *session) fail(err error) {
	s.reply(ErrorFrame{Error: errors.PublicMessage(err)})
	if errors.MapToHTTPStatus(err) >= 500 {
		s.log.Error("Frame handling failed", "error", err)
	}
}

// reply never blocks the read loop; a client that does not read its replies loses them.
func (s *session) reply(v any) {
	select {
	case s.replies <- v:
	default:
		s.log.Warn("Reply dropped, buffer full")
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.ErrInvalidPayload
	}
	return nil
}
