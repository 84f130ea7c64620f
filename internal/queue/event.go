// Package queue defines the ticket event bus: message payloads, the
// publisher used by the lifecycle engine, and the consumer that drives the
// notification dispatcher.
package queue

// EventKind names a ticket lifecycle transition carried on the bus.
type EventKind string

const (
	EventTicketCreated   EventKind = "ticket.created"
	EventTicketCompleted EventKind = "ticket.completed"
)

// TicketEvent is published on every lifecycle transition. It carries
// enough information for the notifier to act without querying the primary
// database. Delivery is decoupled from the creating transaction: the event
// may be delayed or lost without affecting the persisted ticket.
type TicketEvent struct {
	Kind     EventKind `json:"kind"`
	TicketID uint64    `json:"ticket_id"`

	// Creation fields.
	AuthorChat  int64  `json:"author_chat,omitempty"`
	Description string `json:"description,omitempty"`
	Urgent      bool   `json:"urgent,omitempty"`

	// Completion fields.
	ResidentChat int64  `json:"resident_chat,omitempty"`
	Solution     string `json:"solution,omitempty"`
	ClosedBy     int64  `json:"closed_by,omitempty"`
}
