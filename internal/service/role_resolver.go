// Package service hosts application services sitting between the dialogue
// layer and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/repository"
)

// RoleResolver maps a chat identity to its role and sub-type, lazily
// provisioning a visitor record on first contact. The configured director
// chat is always resolved to admin.
type RoleResolver struct {
	users     *repository.UserRepo
	residents *repository.ResidentRepo
	director  int64
}

func NewRoleResolver(users *repository.UserRepo, residents *repository.ResidentRepo, directorChat int64) *RoleResolver {
	return &RoleResolver{users: users, residents: residents, director: directorChat}
}

// Resolve returns the caller's user record and whether a resident profile
// exists. On a store failure the error is propagated as-is: the caller
// must answer "try later" rather than guess a role.
func (r *RoleResolver) Resolve(ctx context.Context, chatID int64, displayName string) (model.User, bool, error) {
	u, err := r.users.Get(ctx, chatID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = model.User{ChatID: chatID, FullName: displayName, Role: model.RoleVisitor, SubType: model.SubTypeNone}
		if chatID == r.director {
			u.Role = model.RoleAdmin
		}
		// Upsert: a concurrent first contact from the same chat is a
		// harmless race and counts as success.
		if err := r.users.Upsert(ctx, u); err != nil {
			return model.User{}, false, fmt.Errorf("provision user: %w", err)
		}
	case err != nil:
		return model.User{}, false, fmt.Errorf("resolve role: %w", err)
	}

	// The director override holds even for a pre-existing row that was
	// created before the env var pointed at this chat.
	if chatID == r.director && u.Role != model.RoleAdmin {
		u.Role = model.RoleAdmin
		if err := r.users.SetRole(ctx, chatID, model.RoleAdmin, model.SubTypeNone); err != nil {
			return model.User{}, false, fmt.Errorf("promote director: %w", err)
		}
	}

	_, err = r.residents.GetByChat(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return u, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("resolve profile: %w", err)
	}
	return u, true, nil
}
