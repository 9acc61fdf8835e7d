//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"collab-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Insert(message domain.Message) (domain.Message, error)
	ListByConversation(id domain.ConversationID) ([]domain.Message, error)
	ListPrivate(userID domain.UserID, id domain.ConversationID) ([]domain.Message, error)
	Latest(id domain.ConversationID) (*domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the CBOR shape persisted in Badger values.
type diskMessage struct {
	ID          string `cbor:"id"`
	Room        int64  `cbor:"room"`
	Sender      int64  `cbor:"sender"`
	Kind        string `cbor:"kind"`
	Body        string `cbor:"body,omitempty"`
	FileName    string `cbor:"file_name,omitempty"`
	ContentType string `cbor:"content_type,omitempty"`
	Size        int64  `cbor:"size,omitempty"`
	At          int64  `cbor:"at"`
}

// messageKey is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func messageKey(room domain.ConversationID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%d:%019d:%s", room, at.UnixNano(), id))
}

func messagePrefix(room domain.ConversationID) []byte {
	return []byte(fmt.Sprintf("msg:%d:", room))
}

// Insert assigns the message id and creation timestamp and persists the
// record. The returned message carries the assigned fields.
func (m MessageRepository) Insert(message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()

	bytes, err := cbor.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal message: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message.ConversationID, message.CreatedAt, message.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("store message for conversation %d: %w", message.ConversationID, err)
	}
	return message, nil
}

// ListByConversation scans the room prefix forward. Thanks to the
// padded timestamp in the key, messages come back oldest first without
// any sort step. It stops once the configured limitMessages is reached.
func (m MessageRepository) ListByConversation(id domain.ConversationID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := messagePrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			var record diskMessage
			err := it.Item().Value(func(value []byte) error {
				return cbor.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			message, err := toMessage(record)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list messages for conversation %d: %w", id, err)
	}
	return messages, nil
}

// ListPrivate serves the private history query. The user id scopes the
// query routing only; storage is keyed by conversation, so the scan is
// the same as for group rooms.
func (m MessageRepository) ListPrivate(userID domain.UserID, id domain.ConversationID) ([]domain.Message, error) {
	messages, err := m.ListByConversation(id)
	if err != nil {
		return nil, fmt.Errorf("private history for user %d: %w", userID, err)
	}
	return messages, nil
}

// Latest returns the newest message of a conversation, or nil when the
// room has none. A reverse iterator seeded past the largest possible
// timestamp lands on the last key of the prefix.
func (m MessageRepository) Latest(id domain.ConversationID) (*domain.Message, error) {
	var latest *domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := messagePrefix(id)
		seekKey := append(append([]byte{}, prefix...), []byte(strings.Repeat("9", 19))...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		var record diskMessage
		err := it.Item().Value(func(value []byte) error {
			return cbor.Unmarshal(value, &record)
		})
		if err != nil {
			return err
		}
		message, err := toMessage(record)
		if err != nil {
			return err
		}
		latest = &message
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest message for conversation %d: %w", id, err)
	}
	return latest, nil
}

func fromMessage(message domain.Message) diskMessage {
	record := diskMessage{
		ID:     message.ID.String(),
		Room:   int64(message.ConversationID),
		Sender: int64(message.SenderID),
		Kind:   string(message.Kind),
		Body:   message.Body,
		At:     message.CreatedAt.UnixNano(),
	}
	if message.Attachment != nil {
		record.FileName = message.Attachment.FileName
		record.ContentType = message.Attachment.ContentType
		record.Size = message.Attachment.Size
	}
	return record
}

func toMessage(record diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:             parsedID,
		ConversationID: domain.ConversationID(record.Room),
		SenderID:       domain.UserID(record.Sender),
		Kind:           domain.MessageKind(record.Kind),
		Body:           record.Body,
		CreatedAt:      time.Unix(0, record.At).UTC(),
	}
	if message.Kind == domain.MessageFile {
		message.Attachment = &domain.Attachment{
			FileName:    record.FileName,
			ContentType: record.ContentType,
			Size:        record.Size,
		}
	}
	return message, nil
}
