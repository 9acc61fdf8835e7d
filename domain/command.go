package domain

import (
	stderrors "errors"
	"fmt"
	"strings"

	"collab-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PostMessageCommand carries a text message append. Body must contain
// at least one non-blank character.
type PostMessageCommand struct {
	ConversationID ConversationID `validate:"required"`
	SenderID       UserID         `validate:"required"`
	Body           string         `validate:"required"`
}

func (c PostMessageCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, flatten(err))
	}
	if strings.TrimSpace(c.Body) == "" {
		return fmt.Errorf("%w: message body is blank", errors.ErrInvalidArgument)
	}
	return nil
}

// PostFileCommand carries a file message append. ConversationID may be
// zero; the append falls back to RoomID in that case. Attachment bytes
// are optional, the content type then defaults to octet-stream.
type PostFileCommand struct {
	ConversationID ConversationID
	RoomID         ConversationID
	SenderID       UserID `validate:"required"`
	FileName       string `validate:"required"`
	Data           []byte
}

func (c PostFileCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, flatten(err))
	}
	if c.ConversationID == 0 && c.RoomID == 0 {
		return fmt.Errorf("%w: neither conversation id nor room id supplied", errors.ErrInvalidArgument)
	}
	return nil
}

// flatten reduces validator's multi-error to the offending field names.
func flatten(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "missing or invalid: " + strings.Join(fields, ", ")
}
