package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sunqar/zhk-support-bot/internal/queue"
)

// StaffDirectory yields the current notification recipient set.
type StaffDirectory interface {
	StaffChatIDs(ctx context.Context) ([]int64, error)
}

// Notifier consumes ticket events and turns them into chat messages: an
// urgent creation fans out to all staff plus the escalation contact, a
// completion notifies the ticket's resident.
type Notifier struct {
	dispatcher *Dispatcher
	staff      StaffDirectory
	director   int64
}

func NewNotifier(d *Dispatcher, staff StaffDirectory, directorChat int64) *Notifier {
	return &Notifier{dispatcher: d, staff: staff, director: directorChat}
}

// Handle is the queue.Handler wired into the consumer.
func (n *Notifier) Handle(ctx context.Context, ev queue.TicketEvent) error {
	switch ev.Kind {
	case queue.EventTicketCreated:
		if !ev.Urgent {
			return nil
		}
		return n.urgentAlert(ctx, ev)
	case queue.EventTicketCompleted:
		return n.completedNotice(ctx, ev)
	}
	log.Printf("notify: ignoring unknown event kind %q", ev.Kind)
	return nil
}

func (n *Notifier) urgentAlert(ctx context.Context, ev queue.TicketEvent) error {
	recipients, err := n.staff.StaffChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("staff directory: %w", err)
	}
	recipients = appendUnique(recipients, n.director)

	text := fmt.Sprintf("🚨 СРОЧНОЕ ОБРАЩЕНИЕ #%d 🚨\n\nОт: %d\nПроблема: %s\nВремя: %s",
		ev.TicketID, ev.AuthorChat, ev.Description, time.Now().Format("15:04 02.01.2006"))

	failed := n.dispatcher.NotifyAll(ctx, recipients, text)
	if len(failed) == 0 {
		return nil
	}
	// The failed subset goes to the escalation contact as one follow-up
	// notice. If even that fails, there is nobody left to tell; log it.
	ids := make([]string, len(failed))
	for i, f := range failed {
		ids[i] = fmt.Sprintf("%d", f)
	}
	notice := fmt.Sprintf("⚠️ Заявка #%d: не удалось уведомить сотрудников: %s",
		ev.TicketID, strings.Join(ids, ", "))
	if err := n.dispatcher.sender.SendText(ctx, n.director, notice); err != nil {
		log.Printf("notify: escalation notice for #%d failed: %v", ev.TicketID, err)
	}
	return nil
}

func (n *Notifier) completedNotice(ctx context.Context, ev queue.TicketEvent) error {
	text := fmt.Sprintf("✅ Ваша заявка #%d завершена!\n\nРешение: %s", ev.TicketID, ev.Solution)
	if err := n.dispatcher.sender.SendText(ctx, ev.ResidentChat, text); err != nil {
		// The completion itself is already committed; a failed notice is
		// logged, not retried, and never surfaces to the closing staff.
		log.Printf("notify: completion notice to %d failed: %v", ev.ResidentChat, err)
	}
	return nil
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
