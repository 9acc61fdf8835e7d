// Package domain contains core concepts of the chat subsystem.
// This file defines Message records and related rules.
// Messages are immutable once appended.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind discriminates text messages from file attachments.
type MessageKind string

const (
	MessageText MessageKind = "TEXT"
	MessageFile MessageKind = "FILE"
)

// Message represents an immutable chat event. SenderName is not
// persisted; it is resolved against the user directory at read time
// and left blank when the sender no longer resolves.
type Message struct {
	ID             uuid.UUID
	ConversationID ConversationID
	SenderID       UserID
	SenderName     string
	Kind           MessageKind
	Body           string
	Attachment     *Attachment
	CreatedAt      time.Time
}

// Attachment describes a file message payload. The content type is
// detected from the file bytes at append time.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
}

// Preview returns the text shown in conversation lists.
func (m Message) Preview() string {
	if m.Kind == MessageFile && m.Attachment != nil {
		return m.Attachment.FileName
	}
	return m.Body
}

// MessageSummary is the cached last-message annotation on a
// conversation listing.
type MessageSummary struct {
	SenderID UserID
	Preview  string
	At       time.Time
}
