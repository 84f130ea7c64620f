package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/sunqar/zhk-support-bot/internal/queue"
)

type fakeDirectory struct{ staff []int64 }

func (d *fakeDirectory) StaffChatIDs(context.Context) ([]int64, error) { return d.staff, nil }

type recordingSender struct {
	texts   map[int64][]string
	failFor map[int64]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{texts: make(map[int64][]string), failFor: make(map[int64]bool)}
}

func (s *recordingSender) SendText(_ context.Context, chatID int64, text string) error {
	if s.failFor[chatID] {
		return context.DeadlineExceeded
	}
	s.texts[chatID] = append(s.texts[chatID], text)
	return nil
}

const director = int64(900)

func TestUrgentCreatedFansOutToStaffAndDirector(t *testing.T) {
	sender := newRecordingSender()
	n := NewNotifier(NewDispatcher(sender, 0), &fakeDirectory{staff: []int64{10, 20}}, director)

	ev := queue.TicketEvent{Kind: queue.EventTicketCreated, TicketID: 5, Urgent: true, Description: "Потоп"}
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	for _, chat := range []int64{10, 20, director} {
		if len(sender.texts[chat]) != 1 {
			t.Errorf("chat %d got %d messages, want 1", chat, len(sender.texts[chat]))
		}
	}
}

func TestDirectorNotDuplicatedWhenAlsoStaff(t *testing.T) {
	sender := newRecordingSender()
	n := NewNotifier(NewDispatcher(sender, 0), &fakeDirectory{staff: []int64{10, director}}, director)

	ev := queue.TicketEvent{Kind: queue.EventTicketCreated, TicketID: 5, Urgent: true}
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.texts[director]) != 1 {
		t.Errorf("director got %d messages, want exactly 1", len(sender.texts[director]))
	}
}

func TestNormalCreatedIsIgnored(t *testing.T) {
	sender := newRecordingSender()
	n := NewNotifier(NewDispatcher(sender, 0), &fakeDirectory{staff: []int64{10}}, director)

	ev := queue.TicketEvent{Kind: queue.EventTicketCreated, TicketID: 5, Urgent: false}
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.texts) != 0 {
		t.Errorf("normal creation must not notify anyone, got %v", sender.texts)
	}
}

func TestFailedRecipientsEscalateToDirector(t *testing.T) {
	sender := newRecordingSender()
	sender.failFor[20] = true
	n := NewNotifier(NewDispatcher(sender, 0), &fakeDirectory{staff: []int64{10, 20}}, director)

	ev := queue.TicketEvent{Kind: queue.EventTicketCreated, TicketID: 5, Urgent: true}
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	msgs := sender.texts[director]
	if len(msgs) != 2 {
		t.Fatalf("director got %d messages, want alert plus escalation notice", len(msgs))
	}
	if !strings.Contains(msgs[1], "20") {
		t.Errorf("escalation notice must name the failed recipient: %q", msgs[1])
	}
}

func TestCompletedNotifiesResident(t *testing.T) {
	sender := newRecordingSender()
	n := NewNotifier(NewDispatcher(sender, 0), &fakeDirectory{}, director)

	ev := queue.TicketEvent{Kind: queue.EventTicketCompleted, TicketID: 5, ResidentChat: 100, Solution: "Кран заменен"}
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.texts[100]) != 1 || !strings.Contains(sender.texts[100][0], "Кран заменен") {
		t.Errorf("resident notice wrong: %v", sender.texts[100])
	}
}
