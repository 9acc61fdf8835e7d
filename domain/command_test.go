package domain

import (
	"testing"

	"collab-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestPostMessageCommand_Validate(t *testing.T) {
	valid := PostMessageCommand{ConversationID: 1, SenderID: 2, Body: "hello"}
	require.NoError(t, valid.Validate())

	cases := map[string]PostMessageCommand{
		"missing sender":       {ConversationID: 1, Body: "hello"},
		"missing conversation": {SenderID: 2, Body: "hello"},
		"empty body":           {ConversationID: 1, SenderID: 2},
		"blank body":           {ConversationID: 1, SenderID: 2, Body: "   \t"},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, cmd.Validate(), errors.ErrInvalidArgument)
		})
	}
}

func TestPostFileCommand_Validate(t *testing.T) {
	req := require.New(t)

	req.NoError(PostFileCommand{RoomID: 42, SenderID: 10, FileName: "spec.pdf"}.Validate())
	req.ErrorIs(PostFileCommand{RoomID: 42, FileName: "spec.pdf"}.Validate(), errors.ErrInvalidArgument)
	req.ErrorIs(PostFileCommand{RoomID: 42, SenderID: 10}.Validate(), errors.ErrInvalidArgument)
	req.ErrorIs(PostFileCommand{SenderID: 10, FileName: "spec.pdf"}.Validate(), errors.ErrInvalidArgument)
}
