package telegram

import (
	"fmt"
	"strings"

	"github.com/sunqar/zhk-support-bot/internal/dialog"
	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/pagination"
	"github.com/sunqar/zhk-support-bot/internal/repository"
)

const timeLayout = "02.01.2006 15:04"

func queueTitle(filter repository.QueueFilter) string {
	switch filter {
	case repository.QueueUrgent:
		return "🚨 Срочные заявки:"
	case repository.QueueCompleted:
		return "📖 Завершенные заявки:"
	default:
		return "📋 Активные заявки:"
	}
}

func urgencyMark(u model.Urgency) string {
	if u == model.UrgencyUrgent {
		return "🚨"
	}
	return "📋"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// renderQueuePage builds the queue listing: one button per ticket opening
// its detail card, plus prev/next navigation when the queue spans pages.
func renderQueuePage(filter repository.QueueFilter, page pagination.Page[model.TicketView]) dialog.Reply {
	if len(page.Items) == 0 {
		return dialog.Reply{
			Text:     "📭 Нет заявок.",
			Keyboard: [][]dialog.Button{{{Label: "🔙 Назад", Data: "back_to_main"}}},
		}
	}
	var rows [][]dialog.Button
	for _, t := range page.Items {
		rows = append(rows, []dialog.Button{{
			Label: fmt.Sprintf("%s #%d от %s", urgencyMark(t.Urgency), t.ID, t.ResidentName),
			Data:  fmt.Sprintf("detail_%d", t.ID),
		}})
	}
	var nav []dialog.Button
	if page.HasPrev {
		nav = append(nav, dialog.Button{Label: "⬅️", Data: fmt.Sprintf("queue_page_%d", page.Index-1)})
	}
	if page.HasNext {
		nav = append(nav, dialog.Button{Label: "➡️", Data: fmt.Sprintf("queue_page_%d", page.Index+1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []dialog.Button{{Label: "🔙 Назад", Data: "back_to_main"}})

	title := queueTitle(filter)
	if page.Total > 1 {
		title += fmt.Sprintf(" (стр. %d/%d)", page.Index+1, page.Total)
	}
	return dialog.Reply{Text: title, Keyboard: rows}
}

// renderDetail builds the staff ticket card with the completion and
// direct-message actions. Completed tickets lose the complete button.
func renderDetail(t model.TicketView) dialog.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "🆔 Номер: #%d\n", t.ID)
	fmt.Fprintf(&b, "👤 От: %s\n", t.ResidentName)
	fmt.Fprintf(&b, "🏠 Адрес: %s\n", t.ResidentAddress)
	fmt.Fprintf(&b, "📅 Дата: %s\n", t.CreatedAt.Format(timeLayout))
	if t.Urgency == model.UrgencyUrgent {
		b.WriteString("🚨 Тип: Срочная\n")
	} else {
		b.WriteString("📋 Тип: Обычная\n")
	}
	fmt.Fprintf(&b, "📝 Описание: %s", t.Description)
	if t.Status == model.TicketStatusCompleted {
		if t.CompletedAt != nil {
			fmt.Fprintf(&b, "\n✅ Завершено: %s", t.CompletedAt.Format(timeLayout))
		}
		if t.Solution != nil {
			fmt.Fprintf(&b, "\n🔧 Решение: %s", *t.Solution)
		}
	}

	var rows [][]dialog.Button
	if t.Status == model.TicketStatusOpen {
		rows = append(rows, []dialog.Button{{
			Label: "✅ Завершить заявку",
			Data:  fmt.Sprintf("complete_%d", t.ID),
		}})
	}
	rows = append(rows,
		[]dialog.Button{{
			Label: "📨 Написать пользователю",
			Data:  fmt.Sprintf("message_user_%d", t.ResidentChatID),
		}},
		[]dialog.Button{{Label: "🔙 Назад к списку", Data: "queue_open"}},
	)
	return dialog.Reply{Text: b.String(), Keyboard: rows}
}

// renderMyRequests builds the resident's own-ticket summary.
func renderMyRequests(items []model.TicketView) dialog.Reply {
	back := [][]dialog.Button{{{Label: "🔙 Главное меню", Data: "back_to_main"}}}
	if len(items) == 0 {
		return dialog.Reply{Text: "📭 У вас пока нет заявок.", Keyboard: back}
	}
	var b strings.Builder
	b.WriteString("📋 Ваши последние заявки:\n\n")
	for _, t := range items {
		status := "🟢 Открыта"
		if t.Status == model.TicketStatusCompleted {
			status = "✅ Завершена"
		}
		urg := "Обычная"
		if t.Urgency == model.UrgencyUrgent {
			urg = "Срочная"
		}
		fmt.Fprintf(&b, "🆔 Номер: #%d\n📅 Дата: %s\n🚨 Тип: %s\n📝 Описание: %s\n%s\n\n",
			t.ID, t.CreatedAt.Format(timeLayout), urg, truncate(t.Description, 100), status)
	}
	return dialog.Reply{Text: b.String(), Keyboard: back}
}

// renderAgents builds the personnel menu: one button per agent, followed
// by the admin actions.
func renderAgents(agents []model.User) dialog.Reply {
	var rows [][]dialog.Button
	text := "👥 Управление персоналом:"
	if len(agents) == 0 {
		text = "👥 Нет зарегистрированных агентов."
	}
	for _, a := range agents {
		rows = append(rows, []dialog.Button{{
			Label: fmt.Sprintf("👤 %s (ID: %d)", a.FullName, a.ChatID),
			Data:  fmt.Sprintf("agent_info_%d", a.ChatID),
		}})
	}
	rows = append(rows, dialog.AdminStaffMenu()...)
	return dialog.Reply{Text: text, Keyboard: rows}
}

func renderAgentInfo(a model.User) dialog.Reply {
	roleText := "Агент поддержки"
	if a.Role == model.RoleAdmin {
		roleText = "Администратор"
	}
	text := fmt.Sprintf("👤 Информация о сотруднике:\n\n🆔 ID: %d\n👤 Имя: %s\n🏅 Роль: %s\n📅 Дата регистрации: %s",
		a.ChatID, a.FullName, roleText, a.CreatedAt.Format("02.01.2006"))
	return dialog.Reply{
		Text: text,
		Keyboard: [][]dialog.Button{
			{{Label: "❌ Удалить", Data: fmt.Sprintf("delete_agent_%d", a.ChatID)}},
			{{Label: "🔙 Назад", Data: "manage_agents"}},
		},
	}
}
