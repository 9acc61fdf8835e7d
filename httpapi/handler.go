// Package httpapi exposes the chat facade as JSON endpoints. It is
// deliberately thin: decode, call, map errors. Push delivery and
// authentication live elsewhere.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"collab-chat/domain"
	"collab-chat/services"

	"github.com/go-chi/chi/v5"
)

// sessionHeader carries the opaque browsing-session id presence
// records are keyed by.
const sessionHeader = "X-Session-ID"

type Handler struct {
	chat services.IChatService
	log  *slog.Logger
}

func NewHandler(chat services.IChatService, log *slog.Logger) *Handler {
	return &Handler{chat: chat, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleListConversations)
	r.Post("/conversations/{conversationID}/open", h.handleOpenConversation)
	r.Get("/conversations/{conversationID}", h.handleConversationDetail)
	r.Get("/conversations/{conversationID}/messages", h.handleGroupHistory)
	r.Get("/conversations/{conversationID}/private-messages", h.handlePrivateHistory)
	r.Get("/conversations/{conversationID}/counterpart", h.handleCounterpart)
	r.Post("/conversations/{conversationID}/members", h.handleInviteMember)
	r.Post("/groups", h.handleCreateGroup)
	r.Post("/private-chats", h.handlePrivateChat)
	r.Post("/messages", h.handleSendMessage)
	r.Post("/files", h.handleSendFile)
	r.Get("/contacts", h.handleListContacts)
	r.Get("/users/{userID}", h.handleGetUser)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	summaries, err := h.chat.ListUserConversations(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleConversationDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	detail, err := h.chat.GetConversationDetail(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleGroupHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	messages, err := h.chat.GetGroupHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handlePrivateHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	messages, err := h.chat.GetPrivateHistory(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleCounterpart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	target, err := h.chat.GetPrivateCounterpart(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"roomId": id, "targetUserId": target})
}

func (h *Handler) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	var payload struct {
		UserID int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.chat.InviteMember(r.Context(), id, domain.UserID(payload.UserID)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name           string  `json:"name"`
		CreatorID      int64   `json:"creatorId"`
		InvitedUserIDs []int64 `json:"invitedUserIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	invited := make([]domain.UserID, 0, len(payload.InvitedUserIDs))
	for _, id := range payload.InvitedUserIDs {
		invited = append(invited, domain.UserID(id))
	}
	id, err := h.chat.CreateGroup(r.Context(), payload.Name, domain.UserID(payload.CreatorID), invited)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"conversationId": id})
}

func (h *Handler) handlePrivateChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID       int64 `json:"userId"`
		TargetUserID int64 `json:"targetUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := h.chat.GetOrCreatePrivateChat(r.Context(), domain.UserID(payload.UserID), domain.UserID(payload.TargetUserID))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversationId": id})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ConversationID int64  `json:"conversationId"`
		SenderID       int64  `json:"senderId"`
		Body           string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd := domain.PostMessageCommand{
		ConversationID: domain.ConversationID(payload.ConversationID),
		SenderID:       domain.UserID(payload.SenderID),
		Body:           payload.Body,
	}
	if err := h.chat.SendTextMessage(r.Context(), cmd); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, nil)
}

func (h *Handler) handleSendFile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ConversationID int64  `json:"conversationId"`
		RoomID         int64  `json:"roomId"`
		SenderID       int64  `json:"senderId"`
		FileName       string `json:"fileName"`
		Data           string `json:"data"` // base64
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "data must be base64 encoded")
		return
	}
	cmd := domain.PostFileCommand{
		ConversationID: domain.ConversationID(payload.ConversationID),
		RoomID:         domain.ConversationID(payload.RoomID),
		SenderID:       domain.UserID(payload.SenderID),
		FileName:       payload.FileName,
		Data:           data,
	}
	if err := h.chat.SendFileMessage(r.Context(), cmd); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, nil)
}

func (h *Handler) handleOpenConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathConversationID(w, r)
	if !ok {
		return
	}
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, sessionHeader+" header is required")
		return
	}
	record, err := h.chat.OpenConversation(sessionID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"open": record.Open, "primary": record.Primary})
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	contacts, err := h.chat.ListContacts(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "userID must be numeric")
		return
	}
	user, err := h.chat.GetUser(r.Context(), domain.UserID(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func pathConversationID(w http.ResponseWriter, r *http.Request) (domain.ConversationID, bool) {
	raw := chi.URLParam(r, "conversationID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "conversationID must be numeric")
		return 0, false
	}
	return domain.ConversationID(id), true
}

func queryUserID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	raw := r.URL.Query().Get("userId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "userId query parameter must be numeric")
		return 0, false
	}
	return domain.UserID(id), true
}
