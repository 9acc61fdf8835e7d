package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"collab-chat/domain"
	"collab-chat/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingMessageRepository captures inserts so tests can assert on
// what, if anything, was written.
type recordingMessageRepository struct {
	inserted []domain.Message
}

func (r *recordingMessageRepository) Insert(message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	r.inserted = append(r.inserted, message)
	return message, nil
}

func (r *recordingMessageRepository) ListByConversation(id domain.ConversationID) ([]domain.Message, error) {
	var messages []domain.Message
	for _, message := range r.inserted {
		if message.ConversationID == id {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

func (r *recordingMessageRepository) ListPrivate(_ domain.UserID, id domain.ConversationID) ([]domain.Message, error) {
	return r.ListByConversation(id)
}

func (r *recordingMessageRepository) Latest(id domain.ConversationID) (*domain.Message, error) {
	messages, _ := r.ListByConversation(id)
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[len(messages)-1], nil
}

type stubDirectory struct {
	users map[domain.UserID]domain.User
}

func (d stubDirectory) Put(user domain.User) error {
	d.users[user.ID] = user
	return nil
}

func (d stubDirectory) GetByID(id domain.UserID) (domain.User, error) {
	user, ok := d.users[id]
	if !ok {
		return domain.User{}, errors.ErrUserNotFound
	}
	return user, nil
}

func (d stubDirectory) ListActiveExcept(id domain.UserID) ([]domain.User, error) {
	var users []domain.User
	for _, user := range d.users {
		if user.Active && user.ID != id {
			users = append(users, user)
		}
	}
	return users, nil
}

var errDirectoryDown = stderrors.New("directory unavailable")

// failingDirectory simulates a directory whose backing store is down,
// as opposed to one that merely has no record of a user.
type failingDirectory struct{}

func (failingDirectory) Put(domain.User) error { return errDirectoryDown }

func (failingDirectory) GetByID(domain.UserID) (domain.User, error) {
	return domain.User{}, errDirectoryDown
}

func (failingDirectory) ListActiveExcept(domain.UserID) ([]domain.User, error) {
	return nil, errDirectoryDown
}

func newMessageService() (*MessageService, *recordingMessageRepository) {
	repository := &recordingMessageRepository{}
	directory := stubDirectory{users: map[domain.UserID]domain.User{
		1: {ID: 1, Name: "Alice Park", Active: true},
	}}
	return NewMessageService(repository, directory, slog.Default()), repository
}

func TestPostMessage_BlankBodyWritesNothing(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	err := service.PostMessage(context.Background(), domain.PostMessageCommand{
		ConversationID: 1,
		SenderID:       1,
		Body:           "   ",
	})

	req.ErrorIs(err, errors.ErrInvalidArgument)
	req.Empty(repository.inserted)
}

func TestPostMessage_StoresTextMessage(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	err := service.PostMessage(context.Background(), domain.PostMessageCommand{
		ConversationID: 1,
		SenderID:       1,
		Body:           "hello",
	})

	req.NoError(err)
	req.Len(repository.inserted, 1)
	req.Equal(domain.MessageText, repository.inserted[0].Kind)
	req.Equal("hello", repository.inserted[0].Body)
}

func TestPostFileMessage_FallsBackToRoomID(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	err := service.PostFileMessage(context.Background(), domain.PostFileCommand{
		RoomID:   42,
		SenderID: 10,
		FileName: "spec.pdf",
		Data:     []byte("%PDF-1.4 minimal"),
	})

	req.NoError(err)
	req.Len(repository.inserted, 1)
	req.Equal(domain.ConversationID(42), repository.inserted[0].ConversationID)
	req.NotNil(repository.inserted[0].Attachment)
	req.Equal("spec.pdf", repository.inserted[0].Attachment.FileName)
}

func TestPostFileMessage_ExplicitConversationWins(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	err := service.PostFileMessage(context.Background(), domain.PostFileCommand{
		ConversationID: 7,
		RoomID:         42,
		SenderID:       10,
		FileName:       "notes.txt",
	})

	req.NoError(err)
	req.Equal(domain.ConversationID(7), repository.inserted[0].ConversationID)
	req.Equal("application/octet-stream", repository.inserted[0].Attachment.ContentType)
}

func TestListGroupMessages_AnnotatesKnownSendersOnly(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	_, err := repository.Insert(domain.Message{ConversationID: 1, SenderID: 1, Kind: domain.MessageText, Body: "known sender"})
	req.NoError(err)
	_, err = repository.Insert(domain.Message{ConversationID: 1, SenderID: 55, Kind: domain.MessageText, Body: "departed sender"})
	req.NoError(err)

	messages, err := service.ListGroupMessages(context.Background(), 1)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("Alice Park", messages[0].SenderName)
	req.Equal("", messages[1].SenderName)
	req.Equal("departed sender", messages[1].Body)
}

func TestListGroupMessages_DirectoryFailureAbortsListing(t *testing.T) {
	req := require.New(t)
	repository := &recordingMessageRepository{}
	service := NewMessageService(repository, failingDirectory{}, slog.Default())

	_, err := repository.Insert(domain.Message{ConversationID: 1, SenderID: 1, Kind: domain.MessageText, Body: "hello"})
	req.NoError(err)

	_, err = service.ListGroupMessages(context.Background(), 1)
	req.ErrorIs(err, errDirectoryDown)
}

func TestListPrivateMessages_SharesAnnotationRules(t *testing.T) {
	req := require.New(t)
	service, repository := newMessageService()

	_, err := repository.Insert(domain.Message{ConversationID: 9, SenderID: 1, Kind: domain.MessageText, Body: "direct"})
	req.NoError(err)

	messages, err := service.ListPrivateMessages(context.Background(), 2, 9)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("Alice Park", messages[0].SenderName)
}
