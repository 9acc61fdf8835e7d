package services

import (
	"log/slog"
	"testing"

	"collab-chat/domain"
	"collab-chat/errors"
	"collab-chat/repositories"

	"github.com/stretchr/testify/require"
)

func TestPresenceTracker_TracksOpenSetAndPrimary(t *testing.T) {
	req := require.New(t)
	tracker := NewPresenceTracker(repositories.NewSessionStore(), slog.Default())

	record, err := tracker.OpenConversation("session-a", 5)
	req.NoError(err)
	req.Equal(domain.ConversationID(5), record.Primary)

	record, err = tracker.OpenConversation("session-a", 9)
	req.NoError(err)
	req.Equal([]domain.ConversationID{5, 9}, record.Open)
	req.Equal(domain.ConversationID(5), record.Primary)

	record, err = tracker.OpenConversation("session-a", 5)
	req.NoError(err)
	req.Equal([]domain.ConversationID{5, 9}, record.Open)
	req.Equal(domain.ConversationID(5), record.Primary)
}

func TestPresenceTracker_SessionsAreIndependent(t *testing.T) {
	req := require.New(t)
	tracker := NewPresenceTracker(repositories.NewSessionStore(), slog.Default())

	_, err := tracker.OpenConversation("session-a", 5)
	req.NoError(err)
	record, err := tracker.OpenConversation("session-b", 9)
	req.NoError(err)

	req.Equal([]domain.ConversationID{9}, record.Open)
	req.Equal(domain.ConversationID(9), record.Primary)
	req.Equal(domain.ConversationID(5), tracker.Presence("session-a").Primary)
}

func TestPresenceTracker_RequiresSessionAndConversation(t *testing.T) {
	req := require.New(t)
	tracker := NewPresenceTracker(repositories.NewSessionStore(), slog.Default())

	_, err := tracker.OpenConversation("", 5)
	req.ErrorIs(err, errors.ErrInvalidArgument)

	_, err = tracker.OpenConversation("session-a", 0)
	req.ErrorIs(err, errors.ErrInvalidArgument)
}
