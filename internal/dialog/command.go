package dialog

import (
	"strconv"
	"strings"
)

// CommandKind is the closed set of button and slash commands the bot
// understands. Callback payloads are parsed into a Command exactly once at
// the transport boundary; the state machine then switches over kinds
// instead of comparing payload strings.
type CommandKind string

const (
	CmdNone           CommandKind = ""
	CmdStart          CommandKind = "start"
	CmdHelp           CommandKind = "help"
	CmdCancel         CommandKind = "cancel"
	CmdClear          CommandKind = "clear"
	CmdNewRequest     CommandKind = "new_request"
	CmdMyRequests     CommandKind = "my_requests"
	CmdQueue          CommandKind = "queue"        // Queue field selects the filter
	CmdQueuePage      CommandKind = "queue_page"   // Page field is the requested index
	CmdDetail         CommandKind = "detail"       // ID field is the ticket
	CmdComplete       CommandKind = "complete"     // ID field is the ticket
	CmdMessageUser    CommandKind = "message_user" // Chat field is the recipient
	CmdManageAgents   CommandKind = "manage_agents"
	CmdAgentInfo      CommandKind = "agent_info"
	CmdAddAgent       CommandKind = "add_agent"
	CmdDeleteAgent    CommandKind = "delete_agent"
	CmdAddResident    CommandKind = "add_resident"
	CmdDeleteResident CommandKind = "delete_resident"
	CmdChangeRole     CommandKind = "change_role"
	CmdReportMenu     CommandKind = "reports_menu"
	CmdReport         CommandKind = "report" // Period field selects the range
)

// Command is one parsed button press or slash command.
type Command struct {
	Kind   CommandKind
	ID     uint64 // ticket id, when the command targets a ticket
	Chat   int64  // chat id, when the command targets a user
	Queue  string // queue filter name for CmdQueue
	Page   int    // page index for CmdQueuePage
	Period string // report period key: "7", "30", "month"
}

// Input is a single inbound chat event: either free text or a command.
type Input struct {
	Text string
	Cmd  Command
}

// TextInput wraps a plain text message.
func TextInput(text string) Input { return Input{Text: strings.TrimSpace(text)} }

// CmdInput wraps a parsed command.
func CmdInput(c Command) Input { return Input{Cmd: c} }

// ParseCommand turns a raw callback payload into a Command. Payloads follow
// the original bot's convention of underscore-suffixed arguments, e.g.
// "detail_42" or "queue_urgent". Unknown payloads yield CmdNone and are
// rejected by the machine rather than silently accepted.
func ParseCommand(payload string) Command {
	switch payload {
	case "start", "back_to_main":
		return Command{Kind: CmdStart}
	case "help":
		return Command{Kind: CmdHelp}
	case "cancel":
		return Command{Kind: CmdCancel}
	case "new_request":
		return Command{Kind: CmdNewRequest}
	case "my_requests":
		return Command{Kind: CmdMyRequests}
	case "manage_agents":
		return Command{Kind: CmdManageAgents}
	case "add_agent":
		return Command{Kind: CmdAddAgent}
	case "add_resident":
		return Command{Kind: CmdAddResident}
	case "delete_resident":
		return Command{Kind: CmdDeleteResident}
	case "change_role":
		return Command{Kind: CmdChangeRole}
	case "reports_menu":
		return Command{Kind: CmdReportMenu}
	}

	if q, ok := strings.CutPrefix(payload, "queue_page_"); ok {
		if n, err := strconv.Atoi(q); err == nil {
			return Command{Kind: CmdQueuePage, Page: n}
		}
		return Command{}
	}
	if q, ok := strings.CutPrefix(payload, "queue_"); ok {
		switch q {
		case "open", "urgent", "completed":
			return Command{Kind: CmdQueue, Queue: q}
		}
		return Command{}
	}
	if arg, ok := strings.CutPrefix(payload, "detail_"); ok {
		return ticketCommand(CmdDetail, arg)
	}
	if arg, ok := strings.CutPrefix(payload, "complete_"); ok {
		return ticketCommand(CmdComplete, arg)
	}
	if arg, ok := strings.CutPrefix(payload, "message_user_"); ok {
		return chatCommand(CmdMessageUser, arg)
	}
	if arg, ok := strings.CutPrefix(payload, "agent_info_"); ok {
		return chatCommand(CmdAgentInfo, arg)
	}
	if arg, ok := strings.CutPrefix(payload, "delete_agent_"); ok {
		return chatCommand(CmdDeleteAgent, arg)
	}
	if arg, ok := strings.CutPrefix(payload, "report_"); ok {
		switch arg {
		case "7", "30", "month":
			return Command{Kind: CmdReport, Period: arg}
		}
		return Command{}
	}
	return Command{}
}

func ticketCommand(kind CommandKind, arg string) Command {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return Command{}
	}
	return Command{Kind: kind, ID: id}
}

func chatCommand(kind CommandKind, arg string) Command {
	chat, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return Command{}
	}
	return Command{Kind: kind, Chat: chat}
}
