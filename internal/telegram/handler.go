package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sunqar/zhk-support-bot/internal/dialog"
	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/pagination"
	"github.com/sunqar/zhk-support-bot/internal/report"
	"github.com/sunqar/zhk-support-bot/internal/repository"
	"github.com/sunqar/zhk-support-bot/internal/retry"
	"github.com/sunqar/zhk-support-bot/internal/service"
	"github.com/sunqar/zhk-support-bot/internal/session"
	"github.com/sunqar/zhk-support-bot/internal/ticket"
)

// userStore is the slice of repository.UserRepo the handler drives.
type userStore interface {
	Get(ctx context.Context, chatID int64) (model.User, error)
	Upsert(ctx context.Context, u model.User) error
	Create(ctx context.Context, u model.User) error
	SetRole(ctx context.Context, chatID int64, role model.Role, sub model.SubType) error
	DeleteAgent(ctx context.Context, chatID int64) error
	DeleteResident(ctx context.Context, chatID int64) error
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

type residentStore interface {
	Upsert(ctx context.Context, m model.Resident) (uint64, error)
	Create(ctx context.Context, m model.Resident) (uint64, error)
}

// Handler processes one inbound update end to end: resolve the caller,
// step the state machine, execute the emitted effect, render the reply.
type Handler struct {
	machine   *dialog.Machine
	sessions  session.Store
	resolver  *service.RoleResolver
	engine    *ticket.Engine
	users     userStore
	residents residentStore
	exporter  *report.Exporter
	sender    *Sender
	pageSize  int
	policy    retry.Policy
}

func NewHandler(
	machine *dialog.Machine,
	sessions session.Store,
	resolver *service.RoleResolver,
	engine *ticket.Engine,
	users userStore,
	residents residentStore,
	exporter *report.Exporter,
	sender *Sender,
	pageSize int,
) *Handler {
	return &Handler{
		machine:   machine,
		sessions:  sessions,
		resolver:  resolver,
		engine:    engine,
		users:     users,
		residents: residents,
		exporter:  exporter,
		sender:    sender,
		pageSize:  pageSize,
		policy:    retry.DefaultStore,
	}
}

// store runs one store-touching operation under the bounded retry policy.
// The repository sentinels are definitive outcomes, not transient failures,
// so they pass through without another attempt.
func (h *Handler) store(ctx context.Context, fn func(ctx context.Context) error) error {
	return h.policy.Do(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		switch {
		case errors.Is(err, repository.ErrNotFound),
			errors.Is(err, repository.ErrAlreadyCompleted),
			errors.Is(err, repository.ErrExists):
			return retry.Permanent(err)
		}
		return err
	})
}

// HandleUpdate is invoked once per update. Same-chat updates arrive here
// serialized in order; cross-chat handling is concurrent.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	chatID, name, in, ok := h.parseUpdate(upd)
	if !ok {
		return
	}

	var user model.User
	var hasProfile bool
	err := h.store(ctx, func(ctx context.Context) error {
		var err error
		user, hasProfile, err = h.resolver.Resolve(ctx, chatID, name)
		return err
	})
	if err != nil {
		// No role means no safe answer except "try later": guessing a
		// role here could leak staff views to a visitor.
		log.Printf("telegram: resolve %d: %v", chatID, err)
		h.respond(ctx, chatID, nil, dialog.ReplyTryLater())
		return
	}

	var sess session.Session
	err = h.store(ctx, func(ctx context.Context) error {
		var err error
		sess, err = h.sessions.Get(ctx, chatID)
		return err
	})
	if err != nil {
		log.Printf("telegram: session get %d: %v", chatID, err)
		h.respond(ctx, chatID, nil, dialog.ReplyTryLater())
		return
	}

	caller := dialog.Caller{ChatID: chatID, Role: user.Role, HasProfile: hasProfile}
	next, eff, reply := h.machine.Step(sess, caller, in)

	if eff == nil {
		h.commit(ctx, chatID, sess, next, reply)
		return
	}

	outcome, persist := h.execute(ctx, caller, &next, eff)
	if !persist {
		// Transient store failure: keep the previous tag so resubmitting
		// the same step is the retry.
		h.respond(ctx, chatID, &sess, outcome)
		return
	}
	h.commit(ctx, chatID, sess, next, outcome)
}

func (h *Handler) parseUpdate(upd tgbotapi.Update) (chatID int64, name string, in dialog.Input, ok bool) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if _, err := h.sender.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			log.Printf("telegram: answer callback: %v", err)
		}
		if cq.Message == nil {
			return 0, "", dialog.Input{}, false
		}
		return cq.Message.Chat.ID, displayName(cq.From), dialog.CmdInput(dialog.ParseCommand(cq.Data)), true

	case upd.Message != nil && upd.Message.Text != "":
		m := upd.Message
		if m.IsCommand() {
			var cmd dialog.Command
			switch m.Command() {
			case "start":
				cmd = dialog.Command{Kind: dialog.CmdStart}
			case "help":
				cmd = dialog.Command{Kind: dialog.CmdHelp}
			case "report":
				cmd = dialog.Command{Kind: dialog.CmdReportMenu}
			case "clear":
				cmd = dialog.Command{Kind: dialog.CmdClear}
			}
			return m.Chat.ID, displayName(m.From), dialog.CmdInput(cmd), true
		}
		return m.Chat.ID, displayName(m.From), dialog.TextInput(m.Text), true
	}
	return 0, "", dialog.Input{}, false
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// commit persists the advanced session, then renders the reply.
func (h *Handler) commit(ctx context.Context, chatID int64, prev, next session.Session, reply dialog.Reply) {
	next.LastMsgID = prev.LastMsgID
	err := h.store(ctx, func(ctx context.Context) error {
		return h.sessions.Put(ctx, chatID, next)
	})
	if err != nil {
		log.Printf("telegram: session put %d: %v", chatID, err)
		h.respond(ctx, chatID, &prev, dialog.ReplyTryLater())
		return
	}
	h.respond(ctx, chatID, &next, reply)
}

// respond deletes the previous bot message, sends the reply, and records
// the new message id. A nil session skips the bookkeeping.
func (h *Handler) respond(ctx context.Context, chatID int64, sess *session.Session, reply dialog.Reply) {
	if reply.Text == "" {
		return
	}
	if sess != nil && sess.LastMsgID != 0 {
		if err := h.sender.DeleteMessage(chatID, sess.LastMsgID); err != nil {
			log.Printf("telegram: delete message %d/%d: %v", chatID, sess.LastMsgID, err)
		}
	}
	msgID, err := h.sender.SendReply(chatID, reply)
	if err != nil {
		log.Printf("telegram: reply to %d: %v", chatID, err)
		return
	}
	if sess != nil {
		sess.LastMsgID = msgID
		if err := h.sessions.Put(ctx, chatID, *sess); err != nil {
			log.Printf("telegram: session put %d: %v", chatID, err)
		}
	}
}

// execute runs one effect descriptor. The bool result reports whether the
// advanced session may be persisted: false means a transient failure where
// the user keeps their current tag and retries the same step.
func (h *Handler) execute(ctx context.Context, c dialog.Caller, next *session.Session, eff dialog.Effect) (dialog.Reply, bool) {
	switch e := eff.(type) {
	case dialog.SaveResident:
		return h.saveResident(ctx, e)

	case dialog.CreateTicket:
		var t *model.Ticket
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			t, err = h.engine.Create(ctx, e.ResidentChat, c.Role, e.Description, nil)
			return err
		})
		if err != nil {
			log.Printf("telegram: create ticket: %v", err)
			return dialog.ReplyTryLater(), false
		}
		return dialog.ReplyTicketCreated(t.ID, t.Urgency == model.UrgencyUrgent), true

	case dialog.CompleteTicket:
		err := h.store(ctx, func(ctx context.Context) error {
			_, err := h.engine.Complete(ctx, e.TicketID, c.ChatID, e.Solution)
			return err
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply(fmt.Sprintf("❌ Заявка #%d не найдена.", e.TicketID)), true
		case errors.Is(err, repository.ErrAlreadyCompleted):
			return backReply(fmt.Sprintf("ℹ️ Заявка #%d уже завершена другим сотрудником.", e.TicketID)), true
		case err != nil:
			log.Printf("telegram: complete ticket #%d: %v", e.TicketID, err)
			return dialog.ReplyTryLater(), false
		}
		return backReply(fmt.Sprintf("✅ Заявка #%d успешно завершена!\nПользователь уведомлен.", e.TicketID)), true

	case dialog.SendDirect:
		if err := h.sender.SendText(ctx, e.Chat, "✉️ Сообщение от поддержки:\n\n"+e.Text); err != nil {
			log.Printf("telegram: direct message to %d: %v", e.Chat, err)
			return backReply("❌ Не удалось отправить сообщение. Пользователь, возможно, не начал диалог с ботом."), true
		}
		return backReply("✅ Сообщение отправлено!"), true

	case dialog.AddAgent:
		err := h.store(ctx, func(ctx context.Context) error {
			return h.users.Create(ctx, model.User{
				ChatID:   e.Chat,
				FullName: e.Name,
				Role:     model.RoleAgent,
				SubType:  model.SubTypeNone,
			})
		})
		switch {
		case errors.Is(err, repository.ErrExists):
			return backReply("❌ Пользователь с таким ID уже существует."), true
		case err != nil:
			log.Printf("telegram: add agent %d: %v", e.Chat, err)
			return dialog.ReplyTryLater(), false
		}
		return backReply(fmt.Sprintf("✅ Новый агент %s (ID: %d) успешно добавлен!", e.Name, e.Chat)), true

	case dialog.DeleteAgent:
		err := h.store(ctx, func(ctx context.Context) error {
			return h.users.DeleteAgent(ctx, e.Chat)
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply("❌ Агент не найден."), true
		case err != nil:
			log.Printf("telegram: delete agent %d: %v", e.Chat, err)
			return dialog.ReplyTryLater(), false
		}
		return backReply("✅ Агент удален."), true

	case dialog.AddResident:
		return h.addResident(ctx, e)

	case dialog.DeleteResident:
		err := h.store(ctx, func(ctx context.Context) error {
			return h.users.DeleteResident(ctx, e.Chat)
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply("❌ Житель не найден."), true
		case err != nil:
			log.Printf("telegram: delete resident %d: %v", e.Chat, err)
			return dialog.ReplyTryLater(), false
		}
		return backReply("✅ Житель и его заявки удалены."), true

	case dialog.SetRole:
		err := h.store(ctx, func(ctx context.Context) error {
			return h.users.SetRole(ctx, e.Chat, e.Role, e.SubType)
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply("❌ Пользователь не найден."), true
		case err != nil:
			log.Printf("telegram: set role %d: %v", e.Chat, err)
			return dialog.ReplyTryLater(), false
		}
		return backReply(fmt.Sprintf("✅ Роль пользователя %d изменена на %s.", e.Chat, e.Role)), true

	case dialog.ShowQueue:
		filter := queueFilter(e.Queue)
		var page pagination.Page[model.TicketView]
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			page, err = h.engine.Queue(ctx, filter, e.Page, h.pageSize)
			return err
		})
		if err != nil {
			log.Printf("telegram: queue %s: %v", e.Queue, err)
			return dialog.ReplyTryLater(), false
		}
		// Re-clamp the stored cursor so a stale "next" press near the end
		// re-renders the last page instead of drifting.
		next.Page = page.Index
		return renderQueuePage(filter, page), true

	case dialog.ShowDetail:
		var t model.TicketView
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			t, err = h.engine.Detail(ctx, e.TicketID)
			return err
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply("❌ Заявка не найдена."), true
		case err != nil:
			log.Printf("telegram: detail #%d: %v", e.TicketID, err)
			return dialog.ReplyTryLater(), false
		}
		return renderDetail(t), true

	case dialog.ShowMyRequests:
		var items []model.TicketView
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			items, err = h.engine.OwnTickets(ctx, c.ChatID, 5)
			return err
		})
		if err != nil {
			log.Printf("telegram: my requests %d: %v", c.ChatID, err)
			return dialog.ReplyTryLater(), false
		}
		return renderMyRequests(items), true

	case dialog.ShowAgents:
		var agents []model.User
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			agents, err = h.users.ListByRole(ctx, model.RoleAgent)
			return err
		})
		if err != nil {
			log.Printf("telegram: list agents: %v", err)
			return dialog.ReplyTryLater(), false
		}
		return renderAgents(agents), true

	case dialog.ShowAgentInfo:
		var a model.User
		err := h.store(ctx, func(ctx context.Context) error {
			var err error
			a, err = h.users.Get(ctx, e.Chat)
			return err
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return backReply("❌ Агент не найден."), true
		case err != nil:
			log.Printf("telegram: agent info %d: %v", e.Chat, err)
			return dialog.ReplyTryLater(), false
		}
		return renderAgentInfo(a), true

	case dialog.BuildReport:
		return h.buildReport(ctx, c, e.Period)

	case dialog.ClearChat:
		err := h.store(ctx, func(ctx context.Context) error {
			return h.sessions.Clear(ctx, c.ChatID)
		})
		if err != nil {
			log.Printf("telegram: session clear %d: %v", c.ChatID, err)
		}
		return backReply("🧹 Чат очищен! Нажмите /start, чтобы начать заново."), true
	}

	log.Printf("telegram: unhandled effect %T", eff)
	return dialog.ReplyTryLater(), true
}

func (h *Handler) saveResident(ctx context.Context, e dialog.SaveResident) (dialog.Reply, bool) {
	err := h.store(ctx, func(ctx context.Context) error {
		return h.users.Upsert(ctx, model.User{
			ChatID:   e.ChatID,
			FullName: e.Name,
			Role:     model.RoleResident,
			SubType:  model.SubTypeResident,
		})
	})
	if err != nil {
		log.Printf("telegram: promote resident %d: %v", e.ChatID, err)
		return dialog.ReplyTryLater(), false
	}
	err = h.store(ctx, func(ctx context.Context) error {
		_, err := h.residents.Upsert(ctx, model.Resident{
			ChatID:   e.ChatID,
			FullName: e.Name,
			Address:  e.Address,
			Phone:    e.Phone,
		})
		return err
	})
	if err != nil {
		log.Printf("telegram: save profile %d: %v", e.ChatID, err)
		return dialog.ReplyTryLater(), false
	}
	return dialog.ReplyRegistered(), true
}

func (h *Handler) addResident(ctx context.Context, e dialog.AddResident) (dialog.Reply, bool) {
	err := h.store(ctx, func(ctx context.Context) error {
		return h.users.Upsert(ctx, model.User{
			ChatID:   e.Chat,
			FullName: e.Name,
			Role:     model.RoleResident,
			SubType:  model.SubTypeResident,
		})
	})
	if err != nil {
		log.Printf("telegram: provision user %d: %v", e.Chat, err)
		return dialog.ReplyTryLater(), false
	}
	err = h.store(ctx, func(ctx context.Context) error {
		_, err := h.residents.Create(ctx, model.Resident{
			ChatID:   e.Chat,
			FullName: e.Name,
			Address:  e.Address,
			Phone:    e.Phone,
		})
		return err
	})
	switch {
	case errors.Is(err, repository.ErrExists):
		return backReply("ℹ️ Житель с таким ID уже зарегистрирован."), true
	case err != nil:
		log.Printf("telegram: add resident %d: %v", e.Chat, err)
		return dialog.ReplyTryLater(), false
	}
	return backReply(fmt.Sprintf("✅ Житель %s (ID: %d) добавлен!", e.Name, e.Chat)), true
}

func (h *Handler) buildReport(ctx context.Context, c dialog.Caller, period string) (dialog.Reply, bool) {
	start, end, err := report.PeriodRange(period, time.Now())
	if err != nil {
		return backReply("❌ Неверный период отчета."), true
	}
	var data []byte
	err = h.store(ctx, func(ctx context.Context) error {
		var err error
		data, err = h.exporter.Build(ctx, start, end)
		return err
	})
	if err != nil {
		log.Printf("telegram: report %s: %v", period, err)
		return backReply("❌ Ошибка генерации отчета. Попробуйте позже."), true
	}
	name := fmt.Sprintf("report_%s.pdf", time.Now().Format("20060102_150405"))
	caption := fmt.Sprintf("📊 Отчет за период с %s по %s",
		start.Format("02.01.2006"), end.Format("02.01.2006"))
	if err := h.sender.SendDocument(c.ChatID, name, data, caption); err != nil {
		log.Printf("telegram: send report: %v", err)
		return backReply("❌ Не удалось отправить отчет. Попробуйте позже."), true
	}
	return dialog.MainMenu(c.Role), true
}

func backReply(text string) dialog.Reply {
	return dialog.Reply{
		Text:     text,
		Keyboard: [][]dialog.Button{{{Label: "🔙 Главное меню", Data: "back_to_main"}}},
	}
}

func queueFilter(q string) repository.QueueFilter {
	switch q {
	case "urgent":
		return repository.QueueUrgent
	case "completed":
		return repository.QueueCompleted
	default:
		return repository.QueueOpen
	}
}
