package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"collab-chat/domain"
	"collab-chat/errors"
	"collab-chat/repositories"
)

type IConversationRegistry interface {
	CreateGroup(ctx context.Context, name string, creatorID domain.UserID, invitedUserIDs []domain.UserID) (domain.ConversationID, error)
	GetOrCreatePrivateChat(ctx context.Context, userID, targetUserID domain.UserID) (domain.ConversationID, error)
	GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error)
	GetPrivateCounterpart(ctx context.Context, id domain.ConversationID, requestingUserID domain.UserID) (domain.UserID, error)
	AddMember(ctx context.Context, id domain.ConversationID, userID domain.UserID) error
	ListMemberIDs(ctx context.Context, id domain.ConversationID) ([]domain.UserID, error)
	ListConversationsForUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error)
}

// ConversationRegistry creates and looks up rooms and owns membership.
// It holds no state of its own; room identity and the private-pair
// uniqueness constraint live in the conversation store.
type ConversationRegistry struct {
	conversations repositories.IConversationRepository
	memberships   repositories.IMembershipRepository
	messages      repositories.IMessageRepository
	users         repositories.IUserDirectory
	log           *slog.Logger
}

func NewConversationRegistry(
	conversations repositories.IConversationRepository,
	memberships repositories.IMembershipRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserDirectory,
	log *slog.Logger,
) *ConversationRegistry {
	return &ConversationRegistry{
		conversations: conversations,
		memberships:   memberships,
		messages:      messages,
		users:         users,
		log:           log,
	}
}

// CreateGroup creates a GROUP room with the creator as its founding
// member, then adds each invited user. The creator is validated against
// the directory before anything is written; the room row and the
// creator's membership commit as one unit, so a room is never visible
// without at least one member. A failed invitee add does not roll back
// earlier adds; it is logged and the remaining invitees are still
// processed. The name is advisory and may be blank.
func (r *ConversationRegistry) CreateGroup(ctx context.Context, name string, creatorID domain.UserID, invitedUserIDs []domain.UserID) (domain.ConversationID, error) {
	if creatorID == 0 {
		return 0, fmt.Errorf("%w: creator id is required", errors.ErrInvalidArgument)
	}
	if _, err := r.users.GetByID(creatorID); err != nil {
		return 0, fmt.Errorf("validate creator %d: %w", creatorID, err)
	}
	id, err := r.conversations.Insert(domain.Conversation{
		Name:      name,
		CreatedBy: creatorID,
		Kind:      domain.KindGroup,
	})
	if err != nil {
		return 0, err
	}
	r.log.Info("Group created", "conversation", id, "name", name, "creator", creatorID)

	for _, invited := range invitedUserIDs {
		if err := r.AddMember(ctx, id, invited); err != nil {
			r.log.Warn("Skipping invitee", "conversation", id, "user", invited, "error", err)
		}
	}
	return id, nil
}

// GetOrCreatePrivateChat resolves the PRIVATE room between a symmetric
// user pair, creating it on first use. The lookup/create race is left
// to the store's pair uniqueness constraint: when creation loses, the
// registry retries the lookup and returns the winner's room.
func (r *ConversationRegistry) GetOrCreatePrivateChat(ctx context.Context, userID, targetUserID domain.UserID) (domain.ConversationID, error) {
	if userID == 0 || targetUserID == 0 {
		return 0, fmt.Errorf("%w: user id and target user id are required", errors.ErrInvalidArgument)
	}
	existing, err := r.conversations.FindPrivateBetween(userID, targetUserID)
	switch {
	case err == nil:
		r.log.Info("Private chat already exists", "conversation", existing.ID, "user", userID, "target", targetUserID)
		return existing.ID, nil
	case !stderrors.Is(err, errors.ErrConversationNotFound):
		return 0, err
	}

	id, err := r.conversations.InsertPrivate(domain.Conversation{
		Name:      "",
		CreatedBy: userID,
		Kind:      domain.KindPrivate,
	}, userID, targetUserID)
	if stderrors.Is(err, errors.ErrPrivateChatConflict) {
		winner, lookupErr := r.conversations.FindPrivateBetween(userID, targetUserID)
		if lookupErr != nil {
			return 0, fmt.Errorf("%w: lookup after losing creation race: %v", errors.ErrPrivateChatConflict, lookupErr)
		}
		r.log.Info("Lost private chat creation race", "conversation", winner.ID, "user", userID, "target", targetUserID)
		return winner.ID, nil
	}
	if err != nil {
		return 0, err
	}
	r.log.Info("Private chat created", "conversation", id, "user", userID, "target", targetUserID)
	return id, nil
}

func (r *ConversationRegistry) GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	return r.conversations.GetByID(id)
}

// GetPrivateCounterpart returns the other member of a PRIVATE room.
// Missing room, non-PRIVATE room, and a room with no member besides the
// requester all surface as not-found.
func (r *ConversationRegistry) GetPrivateCounterpart(ctx context.Context, id domain.ConversationID, requestingUserID domain.UserID) (domain.UserID, error) {
	conversation, err := r.conversations.GetByID(id)
	if err != nil {
		return 0, err
	}
	if conversation.Kind != domain.KindPrivate {
		return 0, fmt.Errorf("%w: conversation %d is not private", errors.ErrConversationNotFound, id)
	}
	memberIDs, err := r.memberships.ListUserIDs(id)
	if err != nil {
		return 0, err
	}
	for _, memberID := range memberIDs {
		if memberID != requestingUserID {
			return memberID, nil
		}
	}
	return 0, fmt.Errorf("%w: conversation %d has no counterpart for user %d", errors.ErrUserNotFound, id, requestingUserID)
}

// AddMember validates that both sides of the pair exist, then inserts
// the membership row. Adding an existing member is a logged no-op.
func (r *ConversationRegistry) AddMember(ctx context.Context, id domain.ConversationID, userID domain.UserID) error {
	if id == 0 || userID == 0 {
		return fmt.Errorf("%w: conversation id and user id are required", errors.ErrInvalidArgument)
	}
	if _, err := r.conversations.GetByID(id); err != nil {
		return err
	}
	if _, err := r.users.GetByID(userID); err != nil {
		return err
	}
	member, err := r.memberships.Exists(id, userID)
	if err != nil {
		return err
	}
	if member {
		r.log.Warn("User already in conversation", "conversation", id, "user", userID)
		return nil
	}
	err = r.memberships.Insert(id, userID)
	if stderrors.Is(err, errors.ErrAlreadyMember) {
		// Lost a race with a concurrent add; same outcome.
		r.log.Warn("User already in conversation", "conversation", id, "user", userID)
		return nil
	}
	if err != nil {
		return err
	}
	r.log.Info("User added to conversation", "conversation", id, "user", userID)
	return nil
}

func (r *ConversationRegistry) ListMemberIDs(ctx context.Context, id domain.ConversationID) ([]domain.UserID, error) {
	return r.memberships.ListUserIDs(id)
}

// ListConversationsForUser returns the user's rooms annotated with a
// recomputed member count and the last message. Rooms with traffic come
// first, newest last message on top; silent rooms follow by creation.
func (r *ConversationRegistry) ListConversationsForUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error) {
	ids, err := r.memberships.ListConversationIDs(userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		conversation, err := r.conversations.GetByID(id)
		if err != nil {
			return nil, err
		}
		memberIDs, err := r.memberships.ListUserIDs(id)
		if err != nil {
			return nil, err
		}
		summary := domain.ConversationSummary{
			Conversation: conversation,
			MemberCount:  len(memberIDs),
		}
		latest, err := r.messages.Latest(id)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			summary.LastMessage = &domain.MessageSummary{
				SenderID: latest.SenderID,
				Preview:  latest.Preview(),
				At:       latest.CreatedAt,
			}
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaryTime(summaries[i]).After(summaryTime(summaries[j]))
	})
	return summaries, nil
}

func summaryTime(s domain.ConversationSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.At
	}
	return s.CreatedAt
}
