// Package domain contains core concepts of the chat subsystem.
// No storage, network, or UI logic should be added here.
package domain

import "time"

type ConversationID int64

type UserID int64

// Kind discriminates the two room flavours carried as data.
type Kind string

const (
	KindGroup   Kind = "GROUP"
	KindPrivate Kind = "PRIVATE"
)

// Conversation is a GROUP or PRIVATE chat room aggregating messages
// and memberships. A PRIVATE conversation has exactly two members for
// its entire lifetime; a GROUP conversation has at least one.
type Conversation struct {
	ID        ConversationID
	Name      string // may be blank for PRIVATE rooms
	CreatedBy UserID
	CreatedAt time.Time
	Kind      Kind
}

// ConversationSummary annotates a conversation for listing: the member
// count is recomputed per call rather than stored denormalized, and the
// last message is joined in at read time.
type ConversationSummary struct {
	Conversation
	MemberCount int
	LastMessage *MessageSummary
}

// ConversationDetail is the shape served for a single room lookup.
type ConversationDetail struct {
	Conversation
	MemberIDs []UserID
}
