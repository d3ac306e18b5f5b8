// Package client talks to a chat relay over its REST and websocket surfaces.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"chat-relay/domain"

	"github.com/gorilla/websocket"
)

// APIError is a non-2xx answer from the relay.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay answered %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

func New(serverURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

func (c *Client) Token() string { return c.token }

func (c *Client) Signup(ctx context.Context, username, email, password string) (domain.Identity, error) {
	var identity domain.Identity
	body := map[string]string{"username": username, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/signup", nil, body, &identity)
	return identity, err
}

// Login authenticates and keeps the token for the following calls.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	var result struct {
		Token string          `json:"token"`
		User  domain.Identity `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &result); err != nil {
		return domain.Identity{}, err
	}
	c.token = result.Token
	return result.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) OnlineUsers(ctx context.Context) ([]string, error) {
	var usernames []string
	err := c.do(ctx, http.MethodGet, "/users/online", nil, nil, &usernames)
	return usernames, err
}

// PublicHistory returns one page, newest first, and the cursor of the next one.
func (c *Client) PublicHistory(ctx context.Context, cursor *string) ([]domain.Message, *string, error) {
	query := url.Values{}
	if cursor != nil {
		query.Set("cursor", *cursor)
	}
	var page struct {
		Messages []domain.Message `json:"messages"`
		Cursor   *string          `json:"cursor"`
	}
	if err := c.do(ctx, http.MethodGet, "/messages/public", query, nil, &page); err != nil {
		return nil, nil, err
	}
	return page.Messages, page.Cursor, nil
}

func (c *Client) PrivateHistory(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	var messages []domain.Message
	query := url.Values{"user1": {userA}, "user2": {userB}}
	err := c.do(ctx, http.MethodGet, "/messages/private", query, nil, &messages)
	return messages, err
}

func (c *Client) Search(ctx context.Context, text string) ([]domain.Message, error) {
	var messages []domain.Message
	err := c.do(ctx, http.MethodGet, "/messages/search", url.Values{"q": {text}}, nil, &messages)
	return messages, err
}

// Connect opens the realtime connection, authenticated with the current token.
func (c *Client) Connect(ctx context.Context) (*Conn, error) {
	wsURL := *c.baseURL
	wsURL.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path += "/ws"

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL.String(), err)
	}
	return &Conn{ws: conn}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := *c.baseURL
	target.Path += path
	target.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{Status: resp.StatusCode, Message: failure.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
