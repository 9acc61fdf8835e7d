//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"collab-chat/domain"
	"collab-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

type IMembershipRepository interface {
	Insert(id domain.ConversationID, userID domain.UserID) error
	Exists(id domain.ConversationID, userID domain.UserID) (bool, error)
	ListUserIDs(id domain.ConversationID) ([]domain.UserID, error)
	ListConversationIDs(userID domain.UserID) ([]domain.ConversationID, error)
}

// MembershipRepository stores (conversation, user) pairs as bare keys:
// a forward key for member enumeration and a reverse key so a user's
// rooms can be scanned without touching every conversation.
type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) MembershipRepository {
	return MembershipRepository{db: db}
}

func memberKey(id domain.ConversationID, userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("member:%d:%d", id, userID))
}

func userConversationKey(userID domain.UserID, id domain.ConversationID) []byte {
	return []byte(fmt.Sprintf("userconv:%d:%019d", userID, id))
}

// setMembership writes both index directions for one (conversation,
// user) pair inside the caller's transaction. Shared with the
// conversation repository so a room and its founding members commit
// as one unit.
func setMembership(txn *badger.Txn, id domain.ConversationID, userID domain.UserID) error {
	if err := txn.Set(memberKey(id, userID), nil); err != nil {
		return err
	}
	return txn.Set(userConversationKey(userID, id), nil)
}

// Insert writes both index directions inside one transaction. A pair
// already present returns ErrAlreadyMember; callers treating duplicate
// adds as a no-op check for that sentinel.
func (r MembershipRepository) Insert(id domain.ConversationID, userID domain.UserID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		switch _, err := txn.Get(memberKey(id, userID)); {
		case err == nil:
			return errors.ErrAlreadyMember
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return setMembership(txn, id, userID)
	})
	if err != nil && !stderrors.Is(err, errors.ErrAlreadyMember) {
		return fmt.Errorf("store membership (%d, %d): %w", id, userID, err)
	}
	return err
}

func (r MembershipRepository) Exists(id domain.ConversationID, userID domain.UserID) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(id, userID))
		return err
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check membership (%d, %d): %w", id, userID, err)
	}
	return true, nil
}

func (r MembershipRepository) ListUserIDs(id domain.ConversationID) ([]domain.UserID, error) {
	var userIDs []domain.UserID
	prefix := []byte(fmt.Sprintf("member:%d:", id))
	err := r.scanKeys(prefix, func(rest string) error {
		userID, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, domain.UserID(userID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list members of conversation %d: %w", id, err)
	}
	return userIDs, nil
}

// ListConversationIDs walks the reverse index; the padded conversation
// id in the key yields ids in ascending creation order.
func (r MembershipRepository) ListConversationIDs(userID domain.UserID) ([]domain.ConversationID, error) {
	var ids []domain.ConversationID
	prefix := []byte(fmt.Sprintf("userconv:%d:", userID))
	err := r.scanKeys(prefix, func(rest string) error {
		id, err := strconv.ParseInt(strings.TrimLeft(rest, "0"), 10, 64)
		if err != nil {
			return err
		}
		ids = append(ids, domain.ConversationID(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list conversations of user %d: %w", userID, err)
	}
	return ids, nil
}

// scanKeys iterates a key-only prefix scan and hands each key suffix to
// the collector. Values are never fetched, membership rows have none.
func (r MembershipRepository) scanKeys(prefix []byte, collect func(rest string) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			if err := collect(rest); err != nil {
				return err
			}
		}
		return nil
	})
}
