package repositories

import (
	"log/slog"
	"testing"

	"collab-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Messages_Come_Back_In_Append_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	room := domain.ConversationID(1)
	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		_, err := repository.Insert(domain.Message{
			ConversationID: room,
			SenderID:       7,
			Kind:           domain.MessageText,
			Body:           body,
		})
		req.NoError(err)
	}

	fetched, err := repository.ListByConversation(room)
	req.NoError(err)
	req.Len(fetched, len(bodies))
	for i, message := range fetched {
		req.Equal(bodies[i], message.Body)
		req.NotEqual(uuid.Nil, message.ID)
		if i > 0 {
			req.False(message.CreatedAt.Before(fetched[i-1].CreatedAt))
		}
	}
}

func Test_Message_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), lo.ToPtr(2))

	room := domain.ConversationID(1)
	for _, body := range []string{"a", "b", "c"} {
		_, err := repository.Insert(domain.Message{ConversationID: room, SenderID: 7, Kind: domain.MessageText, Body: body})
		req.NoError(err)
	}

	fetched, err := repository.ListByConversation(room)
	req.NoError(err)
	req.Len(fetched, 2)
}

func Test_Rooms_Do_Not_Leak_Into_Each_Other(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	_, err := repository.Insert(domain.Message{ConversationID: 1, SenderID: 7, Kind: domain.MessageText, Body: "room one"})
	req.NoError(err)
	_, err = repository.Insert(domain.Message{ConversationID: 11, SenderID: 7, Kind: domain.MessageText, Body: "room eleven"})
	req.NoError(err)

	fetched, err := repository.ListByConversation(1)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("room one", fetched[0].Body)
}

func Test_Latest_Returns_Newest_Or_Nil(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	latest, err := repository.Latest(1)
	req.NoError(err)
	req.Nil(latest)

	for _, body := range []string{"old", "new"} {
		_, err = repository.Insert(domain.Message{ConversationID: 1, SenderID: 7, Kind: domain.MessageText, Body: body})
		req.NoError(err)
	}

	latest, err = repository.Latest(1)
	req.NoError(err)
	req.NotNil(latest)
	req.Equal("new", latest.Body)
}

func Test_File_Message_Keeps_Its_Attachment(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	stored, err := repository.Insert(domain.Message{
		ConversationID: 42,
		SenderID:       10,
		Kind:           domain.MessageFile,
		Attachment:     &domain.Attachment{FileName: "spec.pdf", ContentType: "application/pdf", Size: 1024},
	})
	req.NoError(err)

	fetched, err := repository.ListByConversation(42)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(stored.ID, fetched[0].ID)
	req.NotNil(fetched[0].Attachment)
	req.Equal("spec.pdf", fetched[0].Attachment.FileName)
	req.Equal("application/pdf", fetched[0].Attachment.ContentType)
}
