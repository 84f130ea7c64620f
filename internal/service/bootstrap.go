package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/repository"
)

// EnsureAdminProfile provisions the director's admin account and the
// sentinel administrative resident profile that staff-filed tickets are
// attributed to. Idempotent; returns the sentinel profile id.
func EnsureAdminProfile(ctx context.Context, users *repository.UserRepo, residents *repository.ResidentRepo, directorChat int64) (uint64, error) {
	if err := users.Upsert(ctx, model.User{
		ChatID:   directorChat,
		FullName: "Администрация ЖК",
		Role:     model.RoleAdmin,
		SubType:  model.SubTypeNone,
	}); err != nil {
		return 0, fmt.Errorf("ensure director: %w", err)
	}

	res, err := residents.GetByChat(ctx, directorChat)
	if err == nil {
		return res.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("ensure admin profile: %w", err)
	}
	id, err := residents.Create(ctx, model.Resident{
		ChatID:   directorChat,
		FullName: "Администрация ЖК",
		Address:  "Офис управляющей компании",
		Phone:    "-",
	})
	if errors.Is(err, repository.ErrExists) {
		// Lost a startup race with another instance; read the winner.
		res, err = residents.GetByChat(ctx, directorChat)
		if err != nil {
			return 0, fmt.Errorf("ensure admin profile: %w", err)
		}
		return res.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ensure admin profile: %w", err)
	}
	return id, nil
}
