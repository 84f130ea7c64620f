package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

// ResidentRepo provides access to the residents table, the extended
// profile collected during the registration flow. Profiles are 1:1 with
// users and cascade away when the owning user row is deleted.
type ResidentRepo struct{ DB *sql.DB }

func NewResidentRepo(db *sql.DB) *ResidentRepo { return &ResidentRepo{DB: db} }

// GetByChat fetches a resident profile by its owner's chat id.
func (r *ResidentRepo) GetByChat(ctx context.Context, chatID int64) (model.Resident, error) {
	var m model.Resident
	err := r.DB.QueryRowContext(ctx,
		"SELECT resident_id,chat_id,full_name,address,phone,registered_at FROM residents WHERE chat_id=? LIMIT 1",
		chatID).Scan(&m.ID, &m.ChatID, &m.FullName, &m.Address, &m.Phone, &m.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// Upsert saves a profile, replacing the previous one on re-registration,
// and returns the resident id.
func (r *ResidentRepo) Upsert(ctx context.Context, m model.Resident) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO residents (chat_id, full_name, address, phone) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE full_name=VALUES(full_name), address=VALUES(address), phone=VALUES(phone)`,
		m.ChatID, m.FullName, m.Address, m.Phone)
	if err != nil {
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return uint64(id), nil
	}
	// ON DUPLICATE KEY UPDATE reports no insert id for the update path.
	existing, err := r.GetByChat(ctx, m.ChatID)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// Create inserts a profile and fails with ErrExists on a duplicate chat id.
// Used by the admin add-resident flow.
func (r *ResidentRepo) Create(ctx context.Context, m model.Resident) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO residents (chat_id, full_name, address, phone) VALUES (?,?,?,?)",
		m.ChatID, m.FullName, m.Address, m.Phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
