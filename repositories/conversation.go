//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"time"

	"collab-chat/domain"
	"collab-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IConversationRepository interface {
	Insert(conversation domain.Conversation) (domain.ConversationID, error)
	InsertPrivate(conversation domain.Conversation, a, b domain.UserID) (domain.ConversationID, error)
	GetByID(id domain.ConversationID) (domain.Conversation, error)
	FindPrivateBetween(a, b domain.UserID) (domain.Conversation, error)
}

// ConversationRepository assigns numeric room ids from a Badger
// sequence. Callers must Close it to release unused sequence leases.
type ConversationRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewConversationRepository(db *badger.DB) (*ConversationRepository, error) {
	seq, err := db.GetSequence([]byte("seq:conversation"), 64)
	if err != nil {
		return nil, fmt.Errorf("conversation id sequence: %w", err)
	}
	return &ConversationRepository{db: db, seq: seq}, nil
}

func (r *ConversationRepository) Close() error {
	return r.seq.Release()
}

type diskConversation struct {
	ID        int64  `cbor:"id"`
	Name      string `cbor:"name,omitempty"`
	CreatedBy int64  `cbor:"created_by"`
	CreatedAt int64  `cbor:"created_at"`
	Kind      string `cbor:"kind"`
}

func conversationKey(id domain.ConversationID) []byte {
	return []byte(fmt.Sprintf("conv:%019d", id))
}

// pairKey identifies a PRIVATE room by its unordered member pair, so
// lookups are symmetric in the two user ids.
func pairKey(a, b domain.UserID) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte(fmt.Sprintf("pair:%d:%d", a, b))
}

// Insert persists a GROUP conversation and returns its assigned id.
// The creator's membership rows are written in the same transaction:
// a committed room is never member-less, and the id is visible to
// readers before any invitee membership row is written by the caller.
func (r *ConversationRepository) Insert(conversation domain.Conversation) (domain.ConversationID, error) {
	id, data, err := r.prepare(&conversation)
	if err != nil {
		return 0, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(conversationKey(id), data); err != nil {
			return err
		}
		return setMembership(txn, id, conversation.CreatedBy)
	})
	if err != nil {
		return 0, fmt.Errorf("store conversation %q: %w", conversation.Name, err)
	}
	return id, nil
}

// InsertPrivate persists a PRIVATE conversation and reserves the
// unordered pair key in the same transaction. This is the uniqueness
// constraint backing getOrCreatePrivateChat: a concurrent creation for
// the same pair either sees the reserved key or aborts with a Badger
// read-write conflict, both surfaced as ErrPrivateChatConflict so the
// caller can retry the lookup. Both membership rows are part of the
// same transaction, so a PRIVATE room always commits with exactly its
// two members.
func (r *ConversationRepository) InsertPrivate(conversation domain.Conversation, a, b domain.UserID) (domain.ConversationID, error) {
	conversation.Kind = domain.KindPrivate
	id, data, err := r.prepare(&conversation)
	if err != nil {
		return 0, err
	}
	key := pairKey(a, b)
	err = r.db.Update(func(txn *badger.Txn) error {
		switch _, err := txn.Get(key); {
		case err == nil:
			return errors.ErrPrivateChatConflict
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, uint64(id))
		if err := txn.Set(key, idBytes); err != nil {
			return err
		}
		if err := txn.Set(conversationKey(id), data); err != nil {
			return err
		}
		if err := setMembership(txn, id, a); err != nil {
			return err
		}
		return setMembership(txn, id, b)
	})
	switch {
	case stderrors.Is(err, errors.ErrPrivateChatConflict), stderrors.Is(err, badger.ErrConflict):
		return 0, errors.ErrPrivateChatConflict
	case err != nil:
		return 0, fmt.Errorf("store private conversation for pair (%d, %d): %w", a, b, err)
	}
	return id, nil
}

func (r *ConversationRepository) GetByID(id domain.ConversationID) (domain.Conversation, error) {
	var record diskConversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return cbor.Unmarshal(value, &record)
		})
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.Conversation{}, errors.ErrConversationNotFound
	case err != nil:
		return domain.Conversation{}, fmt.Errorf("read conversation %d: %w", id, err)
	}
	return toConversation(record), nil
}

// FindPrivateBetween resolves the PRIVATE room for an unordered user
// pair. Returns ErrConversationNotFound when no such room exists yet.
func (r *ConversationRepository) FindPrivateBetween(a, b domain.UserID) (domain.Conversation, error) {
	var id domain.ConversationID
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(a, b))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			id = domain.ConversationID(binary.BigEndian.Uint64(value))
			return nil
		})
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.Conversation{}, errors.ErrConversationNotFound
	case err != nil:
		return domain.Conversation{}, fmt.Errorf("lookup private pair (%d, %d): %w", a, b, err)
	}
	return r.GetByID(id)
}

// prepare assigns the id and creation timestamp and encodes the record.
// Sequence values start at 0; room ids start at 1 so the zero value
// stays free as an "absent" marker.
func (r *ConversationRepository) prepare(conversation *domain.Conversation) (domain.ConversationID, []byte, error) {
	next, err := r.seq.Next()
	if err != nil {
		return 0, nil, fmt.Errorf("next conversation id: %w", err)
	}
	conversation.ID = domain.ConversationID(next + 1)
	conversation.CreatedAt = time.Now().UTC()
	data, err := cbor.Marshal(fromConversation(*conversation))
	if err != nil {
		return 0, nil, fmt.Errorf("marshal conversation: %w", err)
	}
	return conversation.ID, data, nil
}

func fromConversation(conversation domain.Conversation) diskConversation {
	return diskConversation{
		ID:        int64(conversation.ID),
		Name:      conversation.Name,
		CreatedBy: int64(conversation.CreatedBy),
		CreatedAt: conversation.CreatedAt.UnixNano(),
		Kind:      string(conversation.Kind),
	}
}

func toConversation(record diskConversation) domain.Conversation {
	return domain.Conversation{
		ID:        domain.ConversationID(record.ID),
		Name:      record.Name,
		CreatedBy: domain.UserID(record.CreatedBy),
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
		Kind:      domain.Kind(record.Kind),
	}
}
