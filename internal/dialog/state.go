package dialog

import "github.com/sunqar/zhk-support-bot/internal/session"

// The closed set of dialogue state tags. Each tag expects exactly one kind
// of text input; any other event from that tag is rejected with a re-prompt
// instead of being silently accepted. session.StateIdle is the rest tag.
const (
	// Registration flow.
	StateAwaitName    session.State = "await_name"
	StateAwaitAddress session.State = "await_address"
	StateAwaitPhone   session.State = "await_phone"

	// Ticket authoring.
	StateAwaitProblem session.State = "await_problem"

	// Ticket completion by staff; requires TargetTicket bound in the session.
	StateAwaitSolution session.State = "await_solution"

	// Staff -> resident direct message; requires TargetChat bound.
	StateAwaitDirectMessage session.State = "await_direct_message"

	// Admin: add an agent (id first, then display name).
	StateAwaitAgentID   session.State = "await_agent_id"
	StateAwaitAgentName session.State = "await_agent_name"

	// Admin: provision a resident profile by hand.
	StateAwaitResidentChat    session.State = "await_resident_chat"
	StateAwaitResidentName    session.State = "await_resident_name"
	StateAwaitResidentAddress session.State = "await_resident_address"
	StateAwaitResidentPhone   session.State = "await_resident_phone"

	// Admin: remove a resident (and their tickets) by chat id.
	StateAwaitDeleteResident session.State = "await_delete_resident"

	// Admin: change a user's role (chat id first, then role value).
	StateAwaitRoleChat  session.State = "await_role_chat"
	StateAwaitRoleValue session.State = "await_role_value"
)
