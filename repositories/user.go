//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_directory.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"

	"collab-chat/domain"
	"collab-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"
)

// IUserDirectory is the read-mostly lookup the chat core resolves
// sender names and contact lists against. Put exists for seeding and
// administration; account lifecycle itself lives outside this core.
type IUserDirectory interface {
	Put(user domain.User) error
	GetByID(id domain.UserID) (domain.User, error)
	ListActiveExcept(id domain.UserID) ([]domain.User, error)
}

type UserDirectory struct {
	db *badger.DB
}

func NewUserDirectory(db *badger.DB) UserDirectory {
	return UserDirectory{db: db}
}

type diskUser struct {
	ID        int64  `cbor:"id"`
	Name      string `cbor:"name"`
	Active    bool   `cbor:"active"`
	CreatedAt int64  `cbor:"created_at"`
}

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("user:%019d", id))
}

func (d UserDirectory) Put(user domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	data, err := cbor.Marshal(diskUser{
		ID:        int64(user.ID),
		Name:      user.Name,
		Active:    user.Active,
		CreatedAt: user.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return fmt.Errorf("store user %d: %w", user.ID, err)
	}
	return nil
}

func (d UserDirectory) GetByID(id domain.UserID) (domain.User, error) {
	var record diskUser
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return cbor.Unmarshal(value, &record)
		})
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.User{}, errors.ErrUserNotFound
	case err != nil:
		return domain.User{}, fmt.Errorf("read user %d: %w", id, err)
	}
	return toUser(record), nil
}

// ListActiveExcept serves the contacts view: every active user except
// the requester, in id order.
func (d UserDirectory) ListActiveExcept(id domain.UserID) ([]domain.User, error) {
	var users []domain.User
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record diskUser
			err := it.Item().Value(func(value []byte) error {
				return cbor.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			users = append(users, toUser(record))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return lo.Filter(users, func(user domain.User, _ int) bool {
		return user.Active && user.ID != id
	}), nil
}

func toUser(record diskUser) domain.User {
	return domain.User{
		ID:        domain.UserID(record.ID),
		Name:      record.Name,
		Active:    record.Active,
		CreatedAt: time.Unix(record.CreatedAt, 0).UTC(),
	}
}
