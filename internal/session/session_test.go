package session

import (
	"context"
	"testing"
)

func TestResetKeepsMessageBookkeeping(t *testing.T) {
	s := Session{
		State:        "await_phone",
		Name:         "Иван",
		Address:      "Корпус 1",
		Phone:        "+77071234567",
		TargetTicket: 9,
		TargetChat:   42,
		Queue:        "open",
		Page:         3,
		LastMsgID:    777,
	}
	s.Reset()
	if s.LastMsgID != 777 {
		t.Errorf("LastMsgID = %d, want 777 preserved", s.LastMsgID)
	}
	if s != (Session{LastMsgID: 777}) {
		t.Errorf("reset must discard every other field, got %+v", s)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Get(ctx, 1)
	if err != nil || got != (Session{}) {
		t.Fatalf("fresh chat must yield a zero session, got %+v err=%v", got, err)
	}

	want := Session{State: "await_name", Name: "x", LastMsgID: 5}
	if err := store.Put(ctx, 1, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err = store.Get(ctx, 1)
	if err != nil || got != want {
		t.Fatalf("get = %+v err=%v, want %+v", got, err, want)
	}

	// Sessions are per chat.
	other, _ := store.Get(ctx, 2)
	if other != (Session{}) {
		t.Errorf("chat 2 must be untouched, got %+v", other)
	}

	if err := store.Clear(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = store.Get(ctx, 1)
	if got != (Session{}) {
		t.Errorf("cleared chat must be zero, got %+v", got)
	}
}
