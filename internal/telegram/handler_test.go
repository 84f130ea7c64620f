package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sunqar/zhk-support-bot/internal/dialog"
	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/repository"
	"github.com/sunqar/zhk-support-bot/internal/retry"
	"github.com/sunqar/zhk-support-bot/internal/session"
)

// fakeUserStore mirrors the repository contract, including the role guards
// on the delete statements.
type fakeUserStore struct {
	users map[int64]model.User

	createCalls int
	createFails int // fail this many Create calls before succeeding
	createErr   error
}

func (s *fakeUserStore) Get(_ context.Context, chatID int64) (model.User, error) {
	u, ok := s.users[chatID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) Upsert(_ context.Context, u model.User) error {
	s.users[u.ChatID] = u
	return nil
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if s.createCalls <= s.createFails {
		return errors.New("connection reset")
	}
	if _, ok := s.users[u.ChatID]; ok {
		return repository.ErrExists
	}
	s.users[u.ChatID] = u
	return nil
}

func (s *fakeUserStore) SetRole(_ context.Context, chatID int64, role model.Role, sub model.SubType) error {
	u, ok := s.users[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role, u.SubType = role, sub
	s.users[chatID] = u
	return nil
}

func (s *fakeUserStore) DeleteAgent(_ context.Context, chatID int64) error {
	if u, ok := s.users[chatID]; ok && u.Role == model.RoleAgent {
		delete(s.users, chatID)
		return nil
	}
	return repository.ErrNotFound
}

func (s *fakeUserStore) DeleteResident(_ context.Context, chatID int64) error {
	if u, ok := s.users[chatID]; ok && !u.Role.IsStaff() {
		delete(s.users, chatID)
		return nil
	}
	return repository.ErrNotFound
}

func (s *fakeUserStore) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func testHandler(users *fakeUserStore) *Handler {
	return &Handler{
		sessions: session.NewMemoryStore(),
		users:    users,
		policy:   retry.Policy{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func adminCaller() dialog.Caller {
	return dialog.Caller{ChatID: 1, Role: model.RoleAdmin}
}

func TestDeleteAgentEffectSparesNonAgents(t *testing.T) {
	users := &fakeUserStore{users: map[int64]model.User{
		5: {ChatID: 5, Role: model.RoleResident, FullName: "Житель"},
		6: {ChatID: 6, Role: model.RoleAgent, FullName: "Агент"},
	}}
	h := testHandler(users)
	sess := session.Session{}

	// A crafted delete_agent payload naming a resident must delete nothing.
	reply, persist := h.execute(context.Background(), adminCaller(), &sess, dialog.DeleteAgent{Chat: 5})
	if !persist {
		t.Fatal("a definitive miss is not a transient failure")
	}
	if reply.Text != "❌ Агент не найден." {
		t.Errorf("reply = %q, want the not-found message", reply.Text)
	}
	if _, ok := users.users[5]; !ok {
		t.Fatal("resident 5 was deleted through the agent-delete effect")
	}

	// The real agent still goes away.
	reply, persist = h.execute(context.Background(), adminCaller(), &sess, dialog.DeleteAgent{Chat: 6})
	if !persist || reply.Text != "✅ Агент удален." {
		t.Errorf("agent delete: persist=%v reply=%q", persist, reply.Text)
	}
	if _, ok := users.users[6]; ok {
		t.Error("agent 6 must be gone")
	}
}

func TestDeleteResidentEffectSparesStaff(t *testing.T) {
	users := &fakeUserStore{users: map[int64]model.User{
		6: {ChatID: 6, Role: model.RoleAgent},
	}}
	h := testHandler(users)
	sess := session.Session{}

	reply, persist := h.execute(context.Background(), adminCaller(), &sess, dialog.DeleteResident{Chat: 6})
	if !persist || reply.Text != "❌ Житель не найден." {
		t.Errorf("persist=%v reply=%q, want not-found", persist, reply.Text)
	}
	if _, ok := users.users[6]; !ok {
		t.Fatal("agent 6 was deleted through the resident-delete effect")
	}
}

func TestExecuteRetriesTransientStoreFailure(t *testing.T) {
	users := &fakeUserStore{users: map[int64]model.User{}, createFails: 1}
	h := testHandler(users)
	sess := session.Session{}

	reply, persist := h.execute(context.Background(), adminCaller(), &sess,
		dialog.AddAgent{Chat: 7, Name: "Мария"})
	if !persist {
		t.Fatalf("transient failure must be retried away, reply=%q", reply.Text)
	}
	if users.createCalls != 2 {
		t.Errorf("create calls = %d, want 2 (one failure, one retry)", users.createCalls)
	}
	if _, ok := users.users[7]; !ok {
		t.Error("agent 7 must exist after the retried create")
	}
}

func TestExecuteDoesNotRetryDefinitiveOutcome(t *testing.T) {
	users := &fakeUserStore{users: map[int64]model.User{}, createErr: repository.ErrExists}
	h := testHandler(users)
	sess := session.Session{}

	reply, persist := h.execute(context.Background(), adminCaller(), &sess,
		dialog.AddAgent{Chat: 7, Name: "Мария"})
	if !persist {
		t.Fatal("a duplicate id is a definitive outcome, not a transient failure")
	}
	if users.createCalls != 1 {
		t.Errorf("create calls = %d, want 1 (no retry on a duplicate)", users.createCalls)
	}
	if reply.Text != "❌ Пользователь с таким ID уже существует." {
		t.Errorf("reply = %q", reply.Text)
	}
}
