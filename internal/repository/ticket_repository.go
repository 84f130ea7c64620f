package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

// TicketRepo provides CRUD operations for tickets and their audit log.
// Every lifecycle transition writes exactly one ticket_logs row inside the
// same transaction as the ticket mutation, so the two can never diverge.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

// QueueFilter selects one of the staff triage queues.
type QueueFilter string

const (
	QueueOpen      QueueFilter = "open"      // all open tickets, oldest first
	QueueUrgent    QueueFilter = "urgent"    // open + urgent, oldest first
	QueueCompleted QueueFilter = "completed" // completed, most recent first
)

// Create inserts a ticket together with its 'created' log entry in a single
// transaction and returns the store-assigned id. Either both rows commit or
// both roll back.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket, actorID int64, detail string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (resident_id, description, urgency, status, media_ref) VALUES (?,?,?,?,?)",
		t.ResidentID, t.Description, t.Urgency, model.TicketStatusOpen, t.MediaRef)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	t.ID = uint64(id)
	t.Status = model.TicketStatusOpen

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_logs (ticket_id, action, actor_id, detail) VALUES (?,?,?,?)",
		t.ID, model.LogActionCreated, actorID, detail); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// Complete marks a ticket completed and appends the 'completed' log entry.
// The status guard in the UPDATE makes the first committer win: a second
// caller sees zero affected rows and gets ErrAlreadyCompleted. Returns the
// chat id of the resident who owns the ticket so the caller can notify them.
func (r *TicketRepo) Complete(ctx context.Context, ticketID uint64, closerID int64, solution string) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var residentChat int64
	var status model.TicketStatus
	err = tx.QueryRowContext(ctx,
		`SELECT r.chat_id, t.status FROM tickets t
		 JOIN residents r ON t.resident_id = r.resident_id
		 WHERE t.ticket_id = ?`, ticketID).Scan(&residentChat, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if status == model.TicketStatusCompleted {
		return 0, ErrAlreadyCompleted
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status=?, solution=?, closed_by=?, completed_at=NOW()
		 WHERE ticket_id=? AND status=?`,
		model.TicketStatusCompleted, solution, closerID, ticketID, model.TicketStatusOpen)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrAlreadyCompleted
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_logs (ticket_id, action, actor_id, detail) VALUES (?,?,?,?)",
		ticketID, model.LogActionCompleted, closerID, solution); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return residentChat, nil
}

const viewColumns = `t.ticket_id, t.resident_id, t.description, t.urgency, t.status,
	t.media_ref, t.solution, t.closed_by, t.created_at, t.completed_at,
	r.full_name, r.address, r.chat_id`

func scanView(rows interface{ Scan(...any) error }) (model.TicketView, error) {
	var v model.TicketView
	err := rows.Scan(&v.ID, &v.ResidentID, &v.Description, &v.Urgency, &v.Status,
		&v.MediaRef, &v.Solution, &v.ClosedBy, &v.CreatedAt, &v.CompletedAt,
		&v.ResidentName, &v.ResidentAddress, &v.ResidentChatID)
	return v, err
}

// GetView fetches one ticket joined with its resident.
func (r *TicketRepo) GetView(ctx context.Context, ticketID uint64) (model.TicketView, error) {
	row := r.DB.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM tickets t JOIN residents r ON t.resident_id = r.resident_id WHERE t.ticket_id = ?`,
		viewColumns), ticketID)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

// ListQueue returns the full filtered queue in triage order: open queues
// oldest-first so the longest-waiting ticket is handled first, completed
// newest-first for reporting recency. Queues are small, so paging over the
// full slice happens in memory (internal/pagination).
func (r *TicketRepo) ListQueue(ctx context.Context, filter QueueFilter) ([]model.TicketView, error) {
	var where, order string
	switch filter {
	case QueueOpen:
		where, order = "t.status = 'open'", "t.created_at ASC"
	case QueueUrgent:
		where, order = "t.status = 'open' AND t.urgency = 'urgent'", "t.created_at ASC"
	case QueueCompleted:
		where, order = "t.status = 'completed'", "t.completed_at DESC"
	default:
		return nil, fmt.Errorf("unknown queue filter %q", filter)
	}
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM tickets t JOIN residents r ON t.resident_id = r.resident_id WHERE %s ORDER BY %s`,
		viewColumns, where, order))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListByChat returns the most recent tickets reported from the given chat,
// newest first, for the resident's "my requests" view.
func (r *TicketRepo) ListByChat(ctx context.Context, chatID int64, limit int) ([]model.TicketView, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM tickets t JOIN residents r ON t.resident_id = r.resident_id
		 WHERE r.chat_id = ? ORDER BY t.created_at DESC LIMIT ?`, viewColumns), chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ReportRows returns the flat export rows for tickets created inside the
// half-open range [start, end), newest first.
func (r *TicketRepo) ReportRows(ctx context.Context, start, end time.Time) ([]model.ReportRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.full_name, r.address, t.description, t.urgency, t.status,
		        COALESCE(u.full_name, '—'), t.created_at
		 FROM tickets t
		 JOIN residents r ON t.resident_id = r.resident_id
		 LEFT JOIN users u ON t.closed_by = u.chat_id
		 WHERE t.created_at >= ? AND t.created_at < ?
		 ORDER BY t.created_at DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReportRow
	for rows.Next() {
		var row model.ReportRow
		if err := rows.Scan(&row.ResidentName, &row.Address, &row.Description,
			&row.Urgency, &row.Status, &row.ClosedByName, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
