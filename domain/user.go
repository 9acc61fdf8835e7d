package domain

import "time"

// User is the read-only directory view of a platform user. The chat
// core references users by id and resolves names for display only.
type User struct {
	ID        UserID
	Name      string
	Active    bool
	CreatedAt time.Time
}
