package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/services"
)

const maxSearchLimit = 100

type MessageHandler struct {
	router  services.IMessageRouter
	history services.IHistoryService
	log     *slog.Logger
}

func NewMessageHandler(router services.IMessageRouter, history services.IHistoryService, log *slog.Logger) *MessageHandler {
	return &MessageHandler{router: router, history: history, log: log}
}

// PrivateHistory returns the conversation between user1 and user2, oldest first.
// GET /messages/private?user1=&user2=
func (h *MessageHandler) PrivateHistory(w http.ResponseWriter, r *http.Request) {
	user1 := strings.TrimSpace(r.URL.Query().Get("user1"))
	user2 := strings.TrimSpace(r.URL.Query().Get("user2"))
	if user1 == "" || user2 == "" {
		writeError(w, h.log, errors.ErrInvalidInput)
		return
	}
	messages, err := h.router.FetchPrivateHistory(r.Context(), user1, user2)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// PublicHistory returns one page of broadcast messages, newest first.
// GET /messages/public?cursor=
func (h *MessageHandler) PublicHistory(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	page, err := h.history.PublicPage(r.Context(), cursor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search runs a full-text lookup over broadcast messages.
// GET /messages/search?q=&sender=&limit=
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := repositories.SearchQuery{
		Text:   strings.TrimSpace(r.URL.Query().Get("q")),
		Sender: strings.TrimSpace(r.URL.Query().Get("sender")),
	}
	if query.Text == "" {
		writeError(w, h.log, errors.ErrInvalidInput)
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxSearchLimit {
			writeError(w, h.log, errors.ErrInvalidInput)
			return
		}
		query.Limit = limit
	}
	messages, err := h.history.Search(r.Context(), query)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
