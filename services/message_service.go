package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"collab-chat/domain"
	"collab-chat/errors"
	"collab-chat/repositories"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

type IMessageService interface {
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error
	PostFileMessage(ctx context.Context, cmd domain.PostFileCommand) error
	ListGroupMessages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error)
	ListPrivateMessages(ctx context.Context, userID domain.UserID, id domain.ConversationID) ([]domain.Message, error)
}

// MessageService validates and appends messages and serves ordered
// history with sender names resolved at read time. It performs no
// membership checks; authorization belongs to the caller's layer.
type MessageService struct {
	messages repositories.IMessageRepository
	users    repositories.IUserDirectory
	log      *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository, users repositories.IUserDirectory, log *slog.Logger) *MessageService {
	return &MessageService{messages: messages, users: users, log: log}
}

// PostMessage appends a text message. Validation runs before any store
// access, so a rejected command never writes.
func (s *MessageService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	if err := cmd.Validate(); err != nil {
		s.log.Error("Rejected text message", "conversation", cmd.ConversationID, "sender", cmd.SenderID, "error", err)
		return err
	}
	stored, err := s.messages.Insert(domain.Message{
		ConversationID: cmd.ConversationID,
		SenderID:       cmd.SenderID,
		Kind:           domain.MessageText,
		Body:           cmd.Body,
	})
	if err != nil {
		return err
	}
	s.log.Info("Message stored", "conversation", stored.ConversationID, "sender", stored.SenderID, "message", stored.ID)
	return nil
}

// PostFileMessage appends a file message. When no explicit conversation
// id is supplied the caller's room id stands in for it; file messages
// tolerate this looser identity resolution on purpose.
func (s *MessageService) PostFileMessage(ctx context.Context, cmd domain.PostFileCommand) error {
	if err := cmd.Validate(); err != nil {
		s.log.Error("Rejected file message", "sender", cmd.SenderID, "file", cmd.FileName, "error", err)
		return err
	}
	conversationID := cmd.ConversationID
	if conversationID == 0 {
		conversationID = cmd.RoomID
		s.log.Info("File message without conversation id, using room id", "room", cmd.RoomID)
	}
	stored, err := s.messages.Insert(domain.Message{
		ConversationID: conversationID,
		SenderID:       cmd.SenderID,
		Kind:           domain.MessageFile,
		Attachment: &domain.Attachment{
			FileName:    cmd.FileName,
			ContentType: detectContentType(cmd.Data),
			Size:        int64(len(cmd.Data)),
		},
	})
	if err != nil {
		return err
	}
	s.log.Info("File message stored", "conversation", stored.ConversationID, "sender", stored.SenderID, "file", cmd.FileName)
	return nil
}

// ListGroupMessages returns a room's history in creation order, each
// message annotated with the sender's current display name.
func (s *MessageService) ListGroupMessages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	messages, err := s.messages.ListByConversation(id)
	if err != nil {
		return nil, err
	}
	return s.annotateSenders(messages)
}

// ListPrivateMessages is the (user, conversation) scoped variant. The
// user id only routes the query; it grants nothing.
func (s *MessageService) ListPrivateMessages(ctx context.Context, userID domain.UserID, id domain.ConversationID) ([]domain.Message, error) {
	messages, err := s.messages.ListPrivate(userID, id)
	if err != nil {
		return nil, err
	}
	return s.annotateSenders(messages)
}

// annotateSenders resolves display names against the directory. A
// sender that no longer resolves keeps the message but loses the name;
// any other directory failure aborts the listing.
func (s *MessageService) annotateSenders(messages []domain.Message) ([]domain.Message, error) {
	names := make(map[domain.UserID]string)
	for _, message := range messages {
		if _, seen := names[message.SenderID]; seen {
			continue
		}
		user, err := s.users.GetByID(message.SenderID)
		switch {
		case stderrors.Is(err, errors.ErrUserNotFound):
			s.log.Warn("Sender no longer in directory", "user", message.SenderID)
		case err != nil:
			return nil, fmt.Errorf("resolve sender %d: %w", message.SenderID, err)
		}
		names[message.SenderID] = user.Name
	}
	return lo.Map(messages, func(message domain.Message, _ int) domain.Message {
		message.SenderName = names[message.SenderID]
		return message
	}), nil
}

const fallbackContentType = "application/octet-stream"

func detectContentType(data []byte) string {
	if len(data) == 0 {
		return fallbackContentType
	}
	return mimetype.Detect(data).String()
}
