//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_store.go -package=mocks
package repositories

import (
	"sync"

	"collab-chat/domain"
)

// ISessionStore is the opaque per-session bag the presence record
// lives in. Records are whole-value read and written; the tracker owns
// the update logic.
type ISessionStore interface {
	Presence(sessionID string) (domain.PresenceRecord, bool)
	SavePresence(sessionID string, record domain.PresenceRecord)
}

// SessionStore keeps presence records in process memory. One browsing
// session is single-writer in practice, but sessions share the map, so
// access stays mutex-guarded.
type SessionStore struct {
	mu       sync.RWMutex
	presence map[string]domain.PresenceRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{presence: make(map[string]domain.PresenceRecord)}
}

func (s *SessionStore) Presence(sessionID string) (domain.PresenceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.presence[sessionID]
	return record, ok
}

func (s *SessionStore) SavePresence(sessionID string, record domain.PresenceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[sessionID] = record
}
