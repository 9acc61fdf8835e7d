package services

import (
	"fmt"
	"log/slog"

	"collab-chat/domain"
	"collab-chat/errors"
	"collab-chat/repositories"
)

type IPresenceTracker interface {
	OpenConversation(sessionID string, id domain.ConversationID) (domain.PresenceRecord, error)
	Presence(sessionID string) domain.PresenceRecord
}

// PresenceTracker applies the pure presence update and persists the
// result back into the session store. Presence is local to a browsing
// session; concurrent opens from different sessions of the same user
// produce independent records.
type PresenceTracker struct {
	sessions repositories.ISessionStore
	log      *slog.Logger
}

func NewPresenceTracker(sessions repositories.ISessionStore, log *slog.Logger) *PresenceTracker {
	return &PresenceTracker{sessions: sessions, log: log}
}

func (t *PresenceTracker) OpenConversation(sessionID string, id domain.ConversationID) (domain.PresenceRecord, error) {
	if sessionID == "" || id == 0 {
		return domain.PresenceRecord{}, fmt.Errorf("%w: session id and conversation id are required", errors.ErrInvalidArgument)
	}
	record, _ := t.sessions.Presence(sessionID)
	updated := record.OpenConversation(id)
	t.sessions.SavePresence(sessionID, updated)
	t.log.Debug("Conversation opened", "session", sessionID, "conversation", id, "primary", updated.Primary)
	return updated, nil
}

func (t *PresenceTracker) Presence(sessionID string) domain.PresenceRecord {
	record, _ := t.sessions.Presence(sessionID)
	return record
}
