package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Get fetches a user by chat id.
func (r *UserRepo) Get(ctx context.Context, chatID int64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT chat_id,full_name,role,sub_type,created_at FROM users WHERE chat_id=? LIMIT 1",
		chatID).Scan(&u.ChatID, &u.FullName, &u.Role, &u.SubType, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// Upsert inserts the user or updates name/role/sub_type in place. A
// concurrent insert of the same chat id is treated as success, so lazy
// provisioning never fails the caller on a harmless race.
func (r *UserRepo) Upsert(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (chat_id, full_name, role, sub_type) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE full_name=VALUES(full_name), role=VALUES(role), sub_type=VALUES(sub_type)`,
		u.ChatID, u.FullName, u.Role, u.SubType)
	return err
}

// Create inserts a user and fails with ErrExists when the chat id is taken.
// Used by the admin add-agent flow, where a collision is a user error.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (chat_id, full_name, role, sub_type) VALUES (?,?,?,?)",
		u.ChatID, u.FullName, u.Role, u.SubType)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrExists
		}
		return err
	}
	return nil
}

// SetRole updates the role and sub-type of an existing user.
func (r *UserRepo) SetRole(ctx context.Context, chatID int64, role model.Role, sub model.SubType) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=?, sub_type=? WHERE chat_id=?", role, sub, chatID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean the role already matched; confirm existence.
		if _, err := r.Get(ctx, chatID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAgent removes an agent account. The role guard is part of the
// statement, so a crafted payload naming a resident or admin deletes
// nothing and reports ErrNotFound.
func (r *UserRepo) DeleteAgent(ctx context.Context, chatID int64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE chat_id=? AND role=?", chatID, model.RoleAgent)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResident removes a non-staff user; their profile and tickets
// cascade. Staff accounts are out of reach of this statement.
func (r *UserRepo) DeleteResident(ctx context.Context, chatID int64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE chat_id=? AND role IN (?,?)",
		chatID, model.RoleVisitor, model.RoleResident)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRole returns all users carrying the given role, ordered by name.
// Used for the agent management menu and for the notification recipient set.
func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT chat_id,full_name,role,sub_type,created_at FROM users WHERE role=? ORDER BY full_name",
		role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ChatID, &u.FullName, &u.Role, &u.SubType, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// StaffChatIDs returns the chat ids of every agent and admin. This is the
// recipient set for urgent-ticket fan-out.
func (r *UserRepo) StaffChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT chat_id FROM users WHERE role IN (?,?)", model.RoleAgent, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
