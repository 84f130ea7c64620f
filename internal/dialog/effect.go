package dialog

import "github.com/sunqar/zhk-support-bot/internal/model"

// Effect describes the side effect or data-backed view a transition asks
// its caller to perform. The machine itself never touches the store or the
// transport; it only emits descriptors, which is what keeps Step pure and
// testable. The transport layer executes the effect and renders its result.
type Effect interface{ isEffect() }

// SaveResident persists a registration (profile upsert + role promotion to
// resident). Emitted at the end of the registration flow.
type SaveResident struct {
	ChatID  int64
	Name    string
	Address string
	Phone   string
}

// CreateTicket runs the ticket lifecycle engine for a new problem report.
type CreateTicket struct {
	ResidentChat int64 // chat whose profile owns the ticket
	Description  string
}

// CompleteTicket closes a ticket with the collected solution text.
type CompleteTicket struct {
	TicketID uint64
	Solution string
}

// SendDirect delivers a staff-authored message to a resident's chat.
type SendDirect struct {
	Chat int64
	Text string
}

// AddAgent registers a new support agent.
type AddAgent struct {
	Chat int64
	Name string
}

// DeleteAgent removes an agent account.
type DeleteAgent struct{ Chat int64 }

// AddResident provisions a resident profile on behalf of an admin.
type AddResident struct {
	Chat    int64
	Name    string
	Address string
	Phone   string
}

// DeleteResident removes a resident together with their tickets.
type DeleteResident struct{ Chat int64 }

// SetRole changes a user's role; the sub-type follows the role.
type SetRole struct {
	Chat    int64
	Role    model.Role
	SubType model.SubType
}

// ShowQueue renders one page of a staff triage queue.
type ShowQueue struct {
	Queue string
	Page  int
}

// ShowDetail renders a single ticket card for staff.
type ShowDetail struct{ TicketID uint64 }

// ShowMyRequests renders the caller's own recent tickets.
type ShowMyRequests struct{}

// ShowAgents renders the agent management menu.
type ShowAgents struct{}

// ShowAgentInfo renders one agent's card.
type ShowAgentInfo struct{ Chat int64 }

// BuildReport generates and sends the PDF report for a period key.
type BuildReport struct{ Period string }

// ClearChat wipes the session and the bot's recent messages in the chat.
type ClearChat struct{}

func (SaveResident) isEffect()   {}
func (CreateTicket) isEffect()   {}
func (CompleteTicket) isEffect() {}
func (SendDirect) isEffect()     {}
func (AddAgent) isEffect()       {}
func (DeleteAgent) isEffect()    {}
func (AddResident) isEffect()    {}
func (DeleteResident) isEffect() {}
func (SetRole) isEffect()        {}
func (ShowQueue) isEffect()      {}
func (ShowDetail) isEffect()     {}
func (ShowMyRequests) isEffect() {}
func (ShowAgents) isEffect()     {}
func (ShowAgentInfo) isEffect()  {}
func (BuildReport) isEffect()    {}
func (ClearChat) isEffect()      {}
