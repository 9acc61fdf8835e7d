package services

import (
	"context"

	"collab-chat/domain"
	"collab-chat/repositories"
)

// IChatService is the surface the transport layer consumes. Every
// operation is a thin composition over the registry, message service
// and presence tracker; the facade adds no state of its own.
type IChatService interface {
	ListUserConversations(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error)
	GetConversationDetail(ctx context.Context, id domain.ConversationID) (domain.ConversationDetail, error)
	GetGroupHistory(ctx context.Context, id domain.ConversationID) ([]domain.Message, error)
	GetPrivateHistory(ctx context.Context, userID domain.UserID, id domain.ConversationID) ([]domain.Message, error)
	GetOrCreatePrivateChat(ctx context.Context, userID, targetUserID domain.UserID) (domain.ConversationID, error)
	GetPrivateCounterpart(ctx context.Context, id domain.ConversationID, userID domain.UserID) (domain.UserID, error)
	SendTextMessage(ctx context.Context, cmd domain.PostMessageCommand) error
	SendFileMessage(ctx context.Context, cmd domain.PostFileCommand) error
	InviteMember(ctx context.Context, id domain.ConversationID, userID domain.UserID) error
	CreateGroup(ctx context.Context, name string, creatorID domain.UserID, invitedUserIDs []domain.UserID) (domain.ConversationID, error)
	ListContacts(ctx context.Context, userID domain.UserID) ([]domain.User, error)
	GetUser(ctx context.Context, userID domain.UserID) (domain.User, error)
	OpenConversation(sessionID string, id domain.ConversationID) (domain.PresenceRecord, error)
}

type ChatService struct {
	registry IConversationRegistry
	messages IMessageService
	presence IPresenceTracker
	users    repositories.IUserDirectory
}

func NewChatService(registry IConversationRegistry, messages IMessageService, presence IPresenceTracker, users repositories.IUserDirectory) *ChatService {
	return &ChatService{registry: registry, messages: messages, presence: presence, users: users}
}

func (s *ChatService) ListUserConversations(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error) {
	return s.registry.ListConversationsForUser(ctx, userID)
}

func (s *ChatService) GetConversationDetail(ctx context.Context, id domain.ConversationID) (domain.ConversationDetail, error) {
	conversation, err := s.registry.GetConversation(ctx, id)
	if err != nil {
		return domain.ConversationDetail{}, err
	}
	memberIDs, err := s.registry.ListMemberIDs(ctx, id)
	if err != nil {
		return domain.ConversationDetail{}, err
	}
	return domain.ConversationDetail{Conversation: conversation, MemberIDs: memberIDs}, nil
}

func (s *ChatService) GetGroupHistory(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	return s.messages.ListGroupMessages(ctx, id)
}

func (s *ChatService) GetPrivateHistory(ctx context.Context, userID domain.UserID, id domain.ConversationID) ([]domain.Message, error) {
	return s.messages.ListPrivateMessages(ctx, userID, id)
}

func (s *ChatService) GetOrCreatePrivateChat(ctx context.Context, userID, targetUserID domain.UserID) (domain.ConversationID, error) {
	return s.registry.GetOrCreatePrivateChat(ctx, userID, targetUserID)
}

func (s *ChatService) GetPrivateCounterpart(ctx context.Context, id domain.ConversationID, userID domain.UserID) (domain.UserID, error) {
	return s.registry.GetPrivateCounterpart(ctx, id, userID)
}

func (s *ChatService) SendTextMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	return s.messages.PostMessage(ctx, cmd)
}

func (s *ChatService) SendFileMessage(ctx context.Context, cmd domain.PostFileCommand) error {
	return s.messages.PostFileMessage(ctx, cmd)
}

func (s *ChatService) InviteMember(ctx context.Context, id domain.ConversationID, userID domain.UserID) error {
	return s.registry.AddMember(ctx, id, userID)
}

func (s *ChatService) CreateGroup(ctx context.Context, name string, creatorID domain.UserID, invitedUserIDs []domain.UserID) (domain.ConversationID, error) {
	return s.registry.CreateGroup(ctx, name, creatorID, invitedUserIDs)
}

// ListContacts serves the contact picker: every active user except the
// requester.
func (s *ChatService) ListContacts(ctx context.Context, userID domain.UserID) ([]domain.User, error) {
	return s.users.ListActiveExcept(userID)
}

func (s *ChatService) GetUser(ctx context.Context, userID domain.UserID) (domain.User, error) {
	return s.users.GetByID(userID)
}

func (s *ChatService) OpenConversation(sessionID string, id domain.ConversationID) (domain.PresenceRecord, error) {
	return s.presence.OpenConversation(sessionID, id)
}
