package dialog

import (
	"fmt"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

// Button is one inline keyboard button: a label and the raw callback
// payload it sends back (parsed again by ParseCommand on the way in).
type Button struct {
	Label string
	Data  string
}

// Reply is the response descriptor a transition produces. The transport
// layer renders it; the machine never talks to the chat API itself.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

func reply(text string, rows ...[]Button) Reply {
	return Reply{Text: text, Keyboard: rows}
}

func row(buttons ...Button) []Button { return buttons }

func btn(label, data string) Button { return Button{Label: label, Data: data} }

// cancelKeyboard is attached to every await-input prompt so the user can
// always bail out of a flow.
func cancelKeyboard() [][]Button {
	return [][]Button{row(btn("❌ Отмена", "cancel"))}
}

func backKeyboard(data string) [][]Button {
	return [][]Button{row(btn("🔙 Назад", data))}
}

// MainMenu builds the role-dependent main menu, mirroring the original
// bot's layout: residents create and track requests, agents see the triage
// queues, admins additionally manage staff and pull reports.
func MainMenu(role model.Role) Reply {
	var rows [][]Button
	switch {
	case role == model.RoleAdmin:
		rows = append(rows,
			row(btn("📊 Отчеты", "reports_menu")),
			row(btn("👥 Управление персоналом", "manage_agents")),
		)
		fallthrough
	case role == model.RoleAgent:
		rows = append(rows,
			row(btn("📬 Активные заявки", "queue_open")),
			row(btn("🚨 Срочные заявки", "queue_urgent")),
			row(btn("📖 Завершенные заявки", "queue_completed")),
		)
	default:
		rows = append(rows,
			row(btn("➕ Новая заявка", "new_request")),
			row(btn("📋 Мои заявки", "my_requests")),
			row(btn("ℹ️ Помощь", "help")),
		)
	}
	return reply("🏠 Добро пожаловать в службу поддержки ЖК!", rows...)
}

// ReportMenu lists the supported report periods.
func ReportMenu() Reply {
	return reply("📊 Выберите период отчета:",
		row(btn("📅 Последние 7 дней", "report_7")),
		row(btn("📅 Последние 30 дней", "report_30")),
		row(btn("📅 Текущий месяц", "report_month")),
		row(btn("🔙 Назад", "back_to_main")),
	)
}

// AdminStaffMenu is the entry screen of the personnel section. The agent
// list itself is data-backed and rendered by the transport layer via
// ShowAgents.
func AdminStaffMenu() [][]Button {
	return [][]Button{
		row(btn("➕ Добавить агента", "add_agent")),
		row(btn("🏠 Добавить жителя", "add_resident")),
		row(btn("🗑 Удалить жителя", "delete_resident")),
		row(btn("🔑 Изменить роль", "change_role")),
		row(btn("🔙 Назад", "back_to_main")),
	}
}

func replyTryLater() Reply {
	return reply("❌ Ошибка базы данных. Пожалуйста, попробуйте позже.")
}

// ReplyTryLater is the user-visible transient-failure response. The caller
// keeps the session tag unchanged, so resubmitting the same step retries.
func ReplyTryLater() Reply { return replyTryLater() }

// ReplyAccessDenied is returned for role-check failures; no state changes.
func ReplyAccessDenied() Reply { return reply("❌ Доступ запрещен") }

// ReplyTicketCreated confirms a new ticket to its author.
func ReplyTicketCreated(id uint64, urgent bool) Reply {
	suffix := "⏳ Ожидайте ответа в течение 24 часов."
	if urgent {
		suffix = "🚨 Срочное обращение! Персонал уведомлен."
	}
	return reply(fmt.Sprintf("✅ Ваша заявка принята!\nНомер заявки: #%d\n\n%s", id, suffix),
		row(btn("🔙 Главное меню", "back_to_main")))
}

// ReplyRegistered confirms registration. Ticket authoring is deliberately
// not resumed: the user re-invokes it from the menu with fresh state.
func ReplyRegistered() Reply {
	return reply("✅ Регистрация завершена! Теперь вы можете создать заявку через меню.",
		row(btn("➕ Новая заявка", "new_request")),
		row(btn("🔙 Главное меню", "back_to_main")))
}

func helpScreen(keywords []string) Reply {
	list := ""
	for i, k := range keywords {
		if i > 0 {
			list += ", "
		}
		list += "'" + k + "'"
	}
	return reply("ℹ️ Справка:\n\n• Для срочных проблем используйте слова: "+list+
		"\n• Заявки обрабатываются в течение 24 часов",
		row(btn("🔙 Главное меню", "back_to_main")))
}
