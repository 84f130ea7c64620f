// Package ticket owns the ticket lifecycle: creation with urgency
// classification, completion, and the triage queue listings. It talks to
// the store through small interfaces so the flows are testable without a
// database.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/pagination"
	"github.com/sunqar/zhk-support-bot/internal/queue"
	"github.com/sunqar/zhk-support-bot/internal/repository"
)

// TicketStore is the slice of repository.TicketRepo the engine needs.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket, actorID int64, detail string) (uint64, error)
	Complete(ctx context.Context, ticketID uint64, closerID int64, solution string) (int64, error)
	GetView(ctx context.Context, ticketID uint64) (model.TicketView, error)
	ListQueue(ctx context.Context, filter repository.QueueFilter) ([]model.TicketView, error)
	ListByChat(ctx context.Context, chatID int64, limit int) ([]model.TicketView, error)
}

// ResidentStore resolves the profile a new ticket belongs to.
type ResidentStore interface {
	GetByChat(ctx context.Context, chatID int64) (model.Resident, error)
}

// EventPublisher emits lifecycle events onto the ticket event bus. Emission
// is best-effort: a publish failure is logged, never returned, so a ticket
// is created or completed even when the broker is down.
type EventPublisher interface {
	PublishTicketEvent(ctx context.Context, ev queue.TicketEvent) error
}

// Engine is the ticket lifecycle engine.
type Engine struct {
	tickets   TicketStore
	residents ResidentStore
	events    EventPublisher
	keywords  []string

	// adminResidentID is the sentinel administrative profile that owns
	// tickets filed by staff on behalf of the complex itself.
	adminResidentID uint64
}

func NewEngine(tickets TicketStore, residents ResidentStore, events EventPublisher, keywords []string, adminResidentID uint64) *Engine {
	return &Engine{
		tickets:         tickets,
		residents:       residents,
		events:          events,
		keywords:        keywords,
		adminResidentID: adminResidentID,
	}
}

// Create classifies the description, persists the ticket together with its
// audit entry in one transaction, and emits a created event. The assigned
// id is returned before any chat confirmation is sent. Staff callers
// without a resident profile file against the administrative profile.
func (e *Engine) Create(ctx context.Context, authorChat int64, authorRole model.Role, description string, mediaRef *string) (*model.Ticket, error) {
	residentID := e.adminResidentID
	res, err := e.residents.GetByChat(ctx, authorChat)
	switch {
	case err == nil:
		residentID = res.ID
	case errors.Is(err, repository.ErrNotFound) && authorRole.IsStaff():
		// keep the sentinel profile
	default:
		return nil, fmt.Errorf("resolve resident: %w", err)
	}

	urgency := model.UrgencyNormal
	if Classify(description, e.keywords) {
		urgency = model.UrgencyUrgent
	}
	t := &model.Ticket{
		ResidentID:  residentID,
		Description: description,
		Urgency:     urgency,
		MediaRef:    mediaRef,
	}
	if _, err := e.tickets.Create(ctx, t, authorChat, description); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	e.publish(ctx, queue.TicketEvent{
		Kind:        queue.EventTicketCreated,
		TicketID:    t.ID,
		AuthorChat:  authorChat,
		Description: description,
		Urgent:      urgency == model.UrgencyUrgent,
	})
	return t, nil
}

// Complete marks the ticket completed exactly once. The second of two
// racing staff members receives repository.ErrAlreadyCompleted and nothing
// is overwritten. Returns the resident's chat id for notification; a
// completed event is emitted best-effort so a broker outage never rolls
// back the completion.
func (e *Engine) Complete(ctx context.Context, ticketID uint64, closerID int64, solution string) (int64, error) {
	residentChat, err := e.tickets.Complete(ctx, ticketID, closerID, solution)
	if err != nil {
		return 0, err
	}
	e.publish(ctx, queue.TicketEvent{
		Kind:         queue.EventTicketCompleted,
		TicketID:     ticketID,
		ResidentChat: residentChat,
		Solution:     solution,
		ClosedBy:     closerID,
	})
	return residentChat, nil
}

// Detail fetches one ticket joined with its resident.
func (e *Engine) Detail(ctx context.Context, ticketID uint64) (model.TicketView, error) {
	return e.tickets.GetView(ctx, ticketID)
}

// Queue returns one page of a triage queue. Ordering comes from the store:
// open queues oldest-first, completed newest-first.
func (e *Engine) Queue(ctx context.Context, filter repository.QueueFilter, page, size int) (pagination.Page[model.TicketView], error) {
	items, err := e.tickets.ListQueue(ctx, filter)
	if err != nil {
		return pagination.Page[model.TicketView]{}, fmt.Errorf("list queue: %w", err)
	}
	return pagination.Slice(items, page, size), nil
}

// OwnTickets lists the caller's recent tickets.
func (e *Engine) OwnTickets(ctx context.Context, chatID int64, limit int) ([]model.TicketView, error) {
	return e.tickets.ListByChat(ctx, chatID, limit)
}

func (e *Engine) publish(ctx context.Context, ev queue.TicketEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishTicketEvent(ctx, ev); err != nil {
		log.Printf("ticket: publish %s event for #%d: %v", ev.Kind, ev.TicketID, err)
	}
}
