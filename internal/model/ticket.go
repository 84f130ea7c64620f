package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "open"
	TicketStatusCompleted TicketStatus = "completed"
)

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

// Ticket mirrors the 'tickets' table. Status only ever moves
// open -> completed, exactly once; Solution, ClosedBy and CompletedAt are
// set together on that transition and never touched again.
type Ticket struct {
	ID          uint64
	ResidentID  uint64
	Description string
	Urgency     Urgency
	Status      TicketStatus
	MediaRef    *string
	Solution    *string
	ClosedBy    *int64
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// LogAction enumerates the lifecycle transitions recorded in ticket_logs.
type LogAction string

const (
	LogActionCreated   LogAction = "created"
	LogActionCompleted LogAction = "completed"
)

// TicketLog is one append-only audit entry; rows are never updated or deleted.
type TicketLog struct {
	ID         uint64
	TicketID   uint64
	Action     LogAction
	ActorID    int64
	Detail     string
	ActionTime time.Time
}

// TicketView joins a ticket with its resident for queue listings and
// detail cards shown to staff.
type TicketView struct {
	Ticket
	ResidentName    string
	ResidentAddress string
	ResidentChatID  int64
}

// ReportRow is the flat shape handed to the report exporter. ClosedByName
// is resolved to "—" by the query when the closer is unknown.
type ReportRow struct {
	ResidentName string
	Address      string
	Description  string
	Urgency      Urgency
	Status       TicketStatus
	ClosedByName string
	CreatedAt    time.Time
}
