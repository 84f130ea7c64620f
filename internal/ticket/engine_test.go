package ticket

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/queue"
	"github.com/sunqar/zhk-support-bot/internal/repository"
)

type fakeTicketStore struct {
	nextID       uint64
	created      []model.Ticket
	completed    map[uint64]bool
	residentChat int64
	queue        []model.TicketView
}

func (s *fakeTicketStore) Create(_ context.Context, t *model.Ticket, _ int64, _ string) (uint64, error) {
	s.nextID++
	t.ID = s.nextID
	t.Status = model.TicketStatusOpen
	s.created = append(s.created, *t)
	return t.ID, nil
}

func (s *fakeTicketStore) Complete(_ context.Context, ticketID uint64, _ int64, _ string) (int64, error) {
	if ticketID > s.nextID {
		return 0, repository.ErrNotFound
	}
	if s.completed[ticketID] {
		return 0, repository.ErrAlreadyCompleted
	}
	if s.completed == nil {
		s.completed = make(map[uint64]bool)
	}
	s.completed[ticketID] = true
	return s.residentChat, nil
}

func (s *fakeTicketStore) GetView(_ context.Context, ticketID uint64) (model.TicketView, error) {
	for _, v := range s.queue {
		if v.ID == ticketID {
			return v, nil
		}
	}
	return model.TicketView{}, repository.ErrNotFound
}

func (s *fakeTicketStore) ListQueue(_ context.Context, _ repository.QueueFilter) ([]model.TicketView, error) {
	return s.queue, nil
}

func (s *fakeTicketStore) ListByChat(_ context.Context, _ int64, _ int) ([]model.TicketView, error) {
	return s.queue, nil
}

type fakeResidentStore struct {
	byChat map[int64]model.Resident
}

func (s *fakeResidentStore) GetByChat(_ context.Context, chatID int64) (model.Resident, error) {
	r, ok := s.byChat[chatID]
	if !ok {
		// Wrapped like a real store error; callers must match with errors.Is.
		return model.Resident{}, fmt.Errorf("resident %d: %w", chatID, repository.ErrNotFound)
	}
	return r, nil
}

type capturingPublisher struct {
	events []queue.TicketEvent
	err    error
}

func (p *capturingPublisher) PublishTicketEvent(_ context.Context, ev queue.TicketEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

const adminProfileID = 99

func newTestEngine(store *fakeTicketStore, residents *fakeResidentStore, pub *capturingPublisher) *Engine {
	return NewEngine(store, residents, pub, testKeywords, adminProfileID)
}

func TestEngineCreateClassifies(t *testing.T) {
	store := &fakeTicketStore{}
	residents := &fakeResidentStore{byChat: map[int64]model.Resident{
		100: {ID: 7, ChatID: 100},
	}}
	pub := &capturingPublisher{}
	e := newTestEngine(store, residents, pub)

	normal, err := e.Create(context.Background(), 100, model.RoleResident, "Лампочка не работает", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if normal.Urgency != model.UrgencyNormal {
		t.Errorf("urgency = %s, want normal", normal.Urgency)
	}
	if normal.ResidentID != 7 {
		t.Errorf("resident id = %d, want 7", normal.ResidentID)
	}

	urgent, err := e.Create(context.Background(), 100, model.RoleResident, "Потоп в подвале!", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if urgent.Urgency != model.UrgencyUrgent {
		t.Errorf("urgency = %s, want urgent", urgent.Urgency)
	}
	if urgent.ID == normal.ID {
		t.Error("ids must be distinct")
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[1].Kind != queue.EventTicketCreated || !pub.events[1].Urgent {
		t.Errorf("second event = %+v, want urgent created", pub.events[1])
	}
}

func TestEngineCreateStaffFallsBackToAdminProfile(t *testing.T) {
	store := &fakeTicketStore{}
	residents := &fakeResidentStore{}
	e := newTestEngine(store, residents, &capturingPublisher{})

	got, err := e.Create(context.Background(), 555, model.RoleAgent, "Сломан домофон в офисе", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ResidentID != adminProfileID {
		t.Errorf("resident id = %d, want the administrative profile %d", got.ResidentID, adminProfileID)
	}
}

func TestEngineCreateUnregisteredNonStaff(t *testing.T) {
	e := newTestEngine(&fakeTicketStore{}, &fakeResidentStore{}, &capturingPublisher{})

	if _, err := e.Create(context.Background(), 555, model.RoleResident, "текст", nil); err == nil {
		t.Fatal("create without a profile must fail for non-staff")
	}
}

func TestEngineCreateSurvivesPublishFailure(t *testing.T) {
	store := &fakeTicketStore{}
	residents := &fakeResidentStore{byChat: map[int64]model.Resident{100: {ID: 7, ChatID: 100}}}
	pub := &capturingPublisher{err: errors.New("broker down")}
	e := newTestEngine(store, residents, pub)

	if _, err := e.Create(context.Background(), 100, model.RoleResident, "Потоп!", nil); err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("ticket not persisted")
	}
}

func TestEngineCompleteOnlyOnce(t *testing.T) {
	store := &fakeTicketStore{nextID: 1, residentChat: 100}
	pub := &capturingPublisher{}
	e := newTestEngine(store, &fakeResidentStore{}, pub)

	chat, err := e.Complete(context.Background(), 1, 42, "Кран заменен")
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if chat != 100 {
		t.Errorf("resident chat = %d, want 100", chat)
	}

	if _, err := e.Complete(context.Background(), 1, 43, "другое решение"); !errors.Is(err, repository.ErrAlreadyCompleted) {
		t.Fatalf("second complete = %v, want ErrAlreadyCompleted", err)
	}
	if _, err := e.Complete(context.Background(), 9, 42, "x"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing ticket = %v, want ErrNotFound", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want exactly 1 completion", len(pub.events))
	}
	if pub.events[0].Kind != queue.EventTicketCompleted || pub.events[0].ClosedBy != 42 {
		t.Errorf("event = %+v, want completion by 42", pub.events[0])
	}
}

func TestEngineQueuePaginates(t *testing.T) {
	store := &fakeTicketStore{}
	for i := uint64(1); i <= 7; i++ {
		store.queue = append(store.queue, model.TicketView{Ticket: model.Ticket{ID: i}})
	}
	e := newTestEngine(store, &fakeResidentStore{}, &capturingPublisher{})

	page, err := e.Queue(context.Background(), repository.QueueOpen, 1, 3)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].ID != 4 {
		t.Errorf("page 1 = %+v, want tickets 4..6", page.Items)
	}
	if !page.HasPrev || !page.HasNext {
		t.Errorf("page 1 of 3 must have both neighbours")
	}
}
