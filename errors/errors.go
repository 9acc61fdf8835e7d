package errors

import "fmt"

var (
	ErrInvalidArgument      = fmt.Errorf("invalid argument")
	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrUserNotFound         = fmt.Errorf("user not found")
	ErrAlreadyMember        = fmt.Errorf("user is already a member")
	ErrPrivateChatConflict  = fmt.Errorf("concurrent private chat creation")
)
