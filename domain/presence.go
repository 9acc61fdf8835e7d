package domain

// PresenceRecord tracks which conversations one browsing session has
// open. The open-set keeps insertion order but behaves as a set; the
// first conversation ever opened stays pinned as Primary for default
// display. The zero value is a fresh session with nothing open.
//
// Updates are pure: Open returns a new record and the caller persists
// it back into the session store.
type PresenceRecord struct {
	Open    []ConversationID
	Primary ConversationID // zero until the first open
}

// OpenConversation adds id to the open-set if absent and pins it as
// Primary when no conversation has been opened yet. Reopening an
// already-open conversation changes nothing.
func (p PresenceRecord) OpenConversation(id ConversationID) PresenceRecord {
	if !p.IsOpen(id) {
		open := make([]ConversationID, len(p.Open), len(p.Open)+1)
		copy(open, p.Open)
		p.Open = append(open, id)
	}
	if p.Primary == 0 {
		p.Primary = id
	}
	return p
}

func (p PresenceRecord) IsOpen(id ConversationID) bool {
	for _, open := range p.Open {
		if open == id {
			return true
		}
	}
	return false
}
