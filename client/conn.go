package client

import (
	"encoding/json"
	"sync"
	"time"

	"chat-relay/domain"

	"github.com/gorilla/websocket"
)

// Event is one frame received from the relay: a delivery, an error or a drop notice.
type Event struct {
	Destination domain.Destination `json:"destination,omitempty"`
	Message     *domain.Message    `json:"message,omitempty"`
	Error       string             `json:"error,omitempty"`
	Action      string             `json:"action,omitempty"`
	Outcome     string             `json:"outcome,omitempty"`
}

func (e Event) Private() bool {
	_, ok := e.Destination.Owner()
	return ok
}

// Conn is a realtime connection. Sends are serialized; Next must be called from one goroutine.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

type frame struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type sendPayload struct {
	Receiver string `json:"receiver,omitempty"`
	Content  string `json:"content"`
	Color    string `json:"color,omitempty"`
}

func (c *Conn) Join(username string) error {
	return c.send(frame{Action: "join", Payload: map[string]string{"username": username}})
}

func (c *Conn) Broadcast(content, color string) error {
	return c.send(frame{Action: "send-broadcast", Payload: sendPayload{Content: content, Color: color}})
}

func (c *Conn) Private(receiver, content, color string) error {
	return c.send(frame{Action: "send-private", Payload: sendPayload{Receiver: receiver, Content: content, Color: color}})
}

func (c *Conn) Typing() error {
	return c.send(frame{Action: "typing", Payload: struct{}{}})
}

func (c *Conn) Next() (Event, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Event{}, err
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *Conn) send(f frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(f)
}
