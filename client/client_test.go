package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-relay/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newStubRelay(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication failed: invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":7,"username":"alice"}}`))
	})
	mux.HandleFunc("GET /users/online", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`["alice","bob"]`))
	})
	mux.HandleFunc("GET /messages/public", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "next" {
			_, _ = w.Write([]byte(`{"messages":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":2,"content":"hi","sender":"bob","messageType":"CHAT"}],"cursor":"next"}`))
	})
	upgrader := websocket.Upgrader{}
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		for {
			var in struct {
				Action  string `json:"action"`
				Payload struct {
					Username string `json:"username"`
					Receiver string `json:"receiver"`
					Content  string `json:"content"`
				} `json:"payload"`
			}
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			switch in.Action {
			case "join":
				_ = conn.WriteJSON(domain.Delivery{Destination: domain.Broadcast,
					Message: domain.Message{Sender: in.Payload.Username, Kind: domain.KindJoin}})
			case "send-private":
				_ = conn.WriteJSON(domain.Delivery{Destination: domain.PrivateDestination("alice"),
					Message: domain.Message{Sender: "alice", Receiver: in.Payload.Receiver, Content: in.Payload.Content, Kind: domain.KindPrivateMessage}})
			default:
				_ = conn.WriteJSON(map[string]string{"error": "unknown action"})
			}
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_REST(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, err := New(newStubRelay(t).URL, nil)
	req.NoError(err)

	// Before login the relay refuses
	_, err = c.OnlineUsers(ctx)
	var apiErr *APIError
	req.ErrorAs(err, &apiErr)
	req.Equal(http.StatusUnauthorized, apiErr.Status)

	// Wrong password surfaces the relay message
	_, err = c.Login(ctx, "alice", "nope")
	req.ErrorAs(err, &apiErr)
	req.Contains(apiErr.Message, "invalid credentials")
	req.Empty(c.Token())

	identity, err := c.Login(ctx, "alice", "secret")
	req.NoError(err)
	req.Equal(int64(7), identity.ID)
	req.Equal("tok", c.Token())

	online, err := c.OnlineUsers(ctx)
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, online)

	messages, cursor, err := c.PublicHistory(ctx, nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(domain.KindChat, messages[0].Kind)
	req.NotNil(cursor)

	messages, cursor, err = c.PublicHistory(ctx, cursor)
	req.NoError(err)
	req.Empty(messages)
	req.Nil(cursor)
}

func TestClient_Realtime(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, err := New(newStubRelay(t).URL, nil)
	req.NoError(err)
	_, err = c.Login(ctx, "alice", "secret")
	req.NoError(err)

	conn, err := c.Connect(ctx)
	req.NoError(err)
	defer func() { _ = conn.Close() }()

	req.NoError(conn.Join("alice"))
	event, err := conn.Next()
	req.NoError(err)
	req.Equal(domain.Broadcast, event.Destination)
	req.Equal(domain.KindJoin, event.Message.Kind)
	req.False(event.Private())

	req.NoError(conn.Private("bob", "psst", ""))
	event, err = conn.Next()
	req.NoError(err)
	req.True(event.Private())
	req.Equal("psst", event.Message.Content)

	req.NoError(conn.Typing())
	event, err = conn.Next()
	req.NoError(err)
	req.Equal("unknown action", event.Error)
	req.Nil(event.Message)
}

func TestNew_RejectsBadURL(t *testing.T) {
	req := require.New(t)

	_, err := New("ftp://relay", nil)

	req.Error(err)
}
