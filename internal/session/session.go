// Package session holds the per-chat ephemeral dialogue context: the
// current state tag, partially collected form fields and pagination
// cursors. A session lives only for the duration of an interaction and is
// cleared on flow completion, cancellation or /clear.
package session

// State is the tag naming the dialogue position of a chat. The dialog
// package owns the closed set of valid tags; an empty State means idle.
type State string

// StateIdle is the rest position: no flow in progress, no fields retained.
const StateIdle State = ""

// Session is the typed field bag carried between events of one chat.
// Exactly one flow is ever in progress, so the fields are shared across
// flows and discarded wholesale on reset.
type Session struct {
	State State `json:"state"`

	// Registration and admin-add-resident field collection.
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`

	// Ticket authoring and completion.
	Problem      string `json:"problem,omitempty"`
	TargetTicket uint64 `json:"target_ticket,omitempty"`

	// Admin flows: the chat id being added, removed, messaged or re-roled.
	TargetChat int64  `json:"target_chat,omitempty"`
	NewRole    string `json:"new_role,omitempty"`

	// Staff queue browsing.
	Queue string `json:"queue,omitempty"`
	Page  int    `json:"page,omitempty"`

	// Last bot message in the chat, deleted before the next prompt.
	LastMsgID int `json:"last_msg_id,omitempty"`
}

// Reset returns to idle, discarding every partially entered field but
// keeping the delete-previous-message bookkeeping.
func (s *Session) Reset() {
	last := s.LastMsgID
	*s = Session{LastMsgID: last}
}
