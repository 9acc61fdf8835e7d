package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"collab-chat/domain"
	"collab-chat/repositories"
	"collab-chat/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	conversations, err := repositories.NewConversationRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conversations.Close() })
	messages := repositories.NewMessageRepository(db, log, nil)
	memberships := repositories.NewMembershipRepository(db)
	users := repositories.NewUserDirectory(db)
	for id, name := range map[domain.UserID]string{1: "Alice Park", 2: "Bob Seo"} {
		require.NoError(t, users.Put(domain.User{ID: id, Name: name, Active: true}))
	}

	registry := services.NewConversationRegistry(conversations, memberships, messages, users, log)
	messageService := services.NewMessageService(messages, users, log)
	presence := services.NewPresenceTracker(repositories.NewSessionStore(), log)
	chat := services.NewChatService(registry, messageService, presence, users)
	return NewRouter(chat, log)
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	request := httptest.NewRequest(method, path, &body)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestGroupLifecycleOverHTTP(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/api/groups", map[string]any{
		"name":           "Engineering",
		"creatorId":      1,
		"invitedUserIds": []int64{2},
	})
	req.Equal(http.StatusCreated, created.Code)
	var createdBody struct {
		ConversationID int64 `json:"conversationId"`
	}
	req.NoError(json.Unmarshal(created.Body.Bytes(), &createdBody))
	req.Greater(createdBody.ConversationID, int64(0))

	sent := doJSON(t, router, http.MethodPost, "/api/messages", map[string]any{
		"conversationId": createdBody.ConversationID,
		"senderId":       2,
		"body":           "hello over http",
	})
	req.Equal(http.StatusCreated, sent.Code)

	history := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/conversations/%d/messages", createdBody.ConversationID), nil)
	req.Equal(http.StatusOK, history.Code)
	var messages []struct {
		Body       string `json:"Body"`
		SenderName string `json:"SenderName"`
	}
	req.NoError(json.Unmarshal(history.Body.Bytes(), &messages))
	req.Len(messages, 1)
	req.Equal("hello over http", messages[0].Body)
	req.Equal("Bob Seo", messages[0].SenderName)
}

func TestErrorMappingOverHTTP(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	blank := doJSON(t, router, http.MethodPost, "/api/messages", map[string]any{
		"conversationId": 1,
		"senderId":       1,
		"body":           "   ",
	})
	req.Equal(http.StatusBadRequest, blank.Code)

	missing := doJSON(t, router, http.MethodGet, "/api/conversations/999", nil)
	req.Equal(http.StatusNotFound, missing.Code)
}

func TestOpenConversationOverHTTP(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	noSession := doJSON(t, router, http.MethodPost, "/api/conversations/5/open", nil)
	req.Equal(http.StatusBadRequest, noSession.Code)

	request := httptest.NewRequest(http.MethodPost, "/api/conversations/5/open", nil)
	request.Header.Set(sessionHeader, "session-1")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	req.Equal(http.StatusOK, recorder.Code)

	var body struct {
		Open    []int64 `json:"open"`
		Primary int64   `json:"primary"`
	}
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal([]int64{5}, body.Open)
	req.Equal(int64(5), body.Primary)
}
