package dialog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sunqar/zhk-support-bot/internal/config"
	"github.com/sunqar/zhk-support-bot/internal/model"
	"github.com/sunqar/zhk-support-bot/internal/session"
)

// Caller is the resolved identity of the chat the event arrived from.
type Caller struct {
	ChatID     int64
	Role       model.Role
	HasProfile bool
}

// Machine interprets inbound events against the caller's session and role.
// Step is pure: it never touches the store or the transport. When it emits
// an Effect, the transport layer executes it and only persists the returned
// session on success — a failed persist therefore leaves the user on the
// same tag, and resubmitting the step is the retry.
type Machine struct {
	triage config.TriageConfig
}

func New(triage config.TriageConfig) *Machine { return &Machine{triage: triage} }

var agentIDPattern = regexp.MustCompile(`^\d{5,20}$`)

// Step computes the transition for one event: the next session, an optional
// effect for the caller to execute, and the response to render. When an
// effect is present the Reply is empty and the executor renders the
// outcome (success confirmation or try-later re-prompt).
func (m *Machine) Step(sess session.Session, c Caller, in Input) (session.Session, Effect, Reply) {
	if in.Cmd.Kind != CmdNone {
		return m.stepCommand(sess, c, in.Cmd)
	}
	return m.stepText(sess, c, in.Text)
}

func (m *Machine) stepCommand(sess session.Session, c Caller, cmd Command) (session.Session, Effect, Reply) {
	switch cmd.Kind {
	case CmdStart, CmdCancel:
		// Cancel is a first-class transition: valid from every tag, drops
		// all partially entered fields.
		sess.Reset()
		return sess, nil, MainMenu(c.Role)

	case CmdClear:
		sess.Reset()
		return sess, ClearChat{}, Reply{}

	case CmdHelp:
		return sess, nil, helpScreen(m.triage.UrgentKeywords)

	case CmdNewRequest:
		sess.Reset()
		sess.State = StateAwaitProblem
		return sess, nil, reply("✍️ Опишите вашу проблему:", cancelKeyboard()...)

	case CmdMyRequests:
		return sess, ShowMyRequests{}, Reply{}

	case CmdQueue:
		if !c.Role.IsStaff() {
			return sess, nil, ReplyAccessDenied()
		}
		sess.Queue = cmd.Queue
		sess.Page = 0
		return sess, ShowQueue{Queue: cmd.Queue, Page: 0}, Reply{}

	case CmdQueuePage:
		if !c.Role.IsStaff() {
			return sess, nil, ReplyAccessDenied()
		}
		if sess.Queue == "" {
			sess.Queue = "open"
		}
		sess.Page = cmd.Page
		return sess, ShowQueue{Queue: sess.Queue, Page: cmd.Page}, Reply{}

	case CmdDetail:
		if !c.Role.IsStaff() {
			return sess, nil, ReplyAccessDenied()
		}
		sess.TargetTicket = cmd.ID
		return sess, ShowDetail{TicketID: cmd.ID}, Reply{}

	case CmdComplete:
		if !c.Role.IsStaff() {
			return sess, nil, ReplyAccessDenied()
		}
		if cmd.ID != 0 {
			sess.TargetTicket = cmd.ID
		}
		if sess.TargetTicket == 0 {
			// Completion without a bound ticket is a hard error, not a
			// silent no-op.
			sess.Reset()
			return sess, nil, reply("❌ Ошибка: не найдена текущая заявка.", backKeyboard("back_to_main")...)
		}
		sess.State = StateAwaitSolution
		return sess, nil, reply("✍️ Опишите решение по заявке:", cancelKeyboard()...)

	case CmdMessageUser:
		if !c.Role.IsStaff() {
			return sess, nil, ReplyAccessDenied()
		}
		sess.State = StateAwaitDirectMessage
		sess.TargetChat = cmd.Chat
		return sess, nil, reply("✍️ Введите сообщение для пользователя:", cancelKeyboard()...)

	case CmdManageAgents:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		return sess, ShowAgents{}, Reply{}

	case CmdAgentInfo:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		return sess, ShowAgentInfo{Chat: cmd.Chat}, Reply{}

	case CmdAddAgent:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		sess.Reset()
		sess.State = StateAwaitAgentID
		return sess, nil, reply("✍️ Введите Telegram ID нового агента:", cancelKeyboard()...)

	case CmdDeleteAgent:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		if cmd.Chat == c.ChatID {
			return sess, nil, reply("❌ Нельзя удалить самого себя")
		}
		return sess, DeleteAgent{Chat: cmd.Chat}, Reply{}

	case CmdAddResident:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		sess.Reset()
		sess.State = StateAwaitResidentChat
		return sess, nil, reply("✍️ Введите Telegram ID жителя:", cancelKeyboard()...)

	case CmdDeleteResident:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		sess.Reset()
		sess.State = StateAwaitDeleteResident
		return sess, nil, reply("✍️ Введите Telegram ID жителя для удаления:", cancelKeyboard()...)

	case CmdChangeRole:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		sess.Reset()
		sess.State = StateAwaitRoleChat
		return sess, nil, reply("✍️ Введите Telegram ID пользователя:", cancelKeyboard()...)

	case CmdReportMenu:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		return sess, nil, ReportMenu()

	case CmdReport:
		if c.Role != model.RoleAdmin {
			return sess, nil, ReplyAccessDenied()
		}
		return sess, BuildReport{Period: cmd.Period}, Reply{}
	}

	return sess, nil, reply("⚠️ Команда не распознана", backKeyboard("back_to_main")...)
}

func (m *Machine) stepText(sess session.Session, c Caller, text string) (session.Session, Effect, Reply) {
	switch sess.State {
	case session.StateIdle:
		return sess, nil, MainMenu(c.Role)

	case StateAwaitName:
		if !m.triage.NamePattern.MatchString(text) {
			return sess, nil, reply("❌ Неверный формат имени. Введите ФИО (буквы, пробелы, дефис):", cancelKeyboard()...)
		}
		sess.Name = text
		sess.State = StateAwaitAddress
		return sess, nil, reply("🏠 Введите ваш адрес (например: Корпус 1, кв. 25):", cancelKeyboard()...)

	case StateAwaitAddress:
		if text == "" || len(text) > 255 {
			return sess, nil, reply("❌ Адрес не должен быть пустым или длиннее 255 символов. Попробуйте еще раз:", cancelKeyboard()...)
		}
		sess.Address = text
		sess.State = StateAwaitPhone
		return sess, nil, reply("📱 Введите ваш контактный телефон:", cancelKeyboard()...)

	case StateAwaitPhone:
		phone, ok := m.normalizePhone(text)
		if !ok {
			return sess, nil, reply("❌ Неверный формат телефона. Пожалуйста, введите корректный номер (например, +71234567890):", cancelKeyboard()...)
		}
		eff := SaveResident{ChatID: c.ChatID, Name: sess.Name, Address: sess.Address, Phone: phone}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitProblem:
		if text == "" {
			return sess, nil, reply("❌ Описание не должно быть пустым. Опишите вашу проблему:", cancelKeyboard()...)
		}
		if !c.HasProfile && c.Role != model.RoleAdmin {
			// No profile yet: route into registration first. The problem
			// text is discarded; authoring is re-invoked explicitly after
			// registration so no stale fields leak into the new ticket.
			sess.Reset()
			sess.State = StateAwaitName
			return sess, nil, reply("📝 Для регистрации введите ваше ФИО:", cancelKeyboard()...)
		}
		eff := CreateTicket{ResidentChat: c.ChatID, Description: text}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitSolution:
		if !c.Role.IsStaff() {
			sess.Reset()
			return sess, nil, ReplyAccessDenied()
		}
		if sess.TargetTicket == 0 {
			sess.Reset()
			return sess, nil, reply("❌ Ошибка: не найдена текущая заявка.", backKeyboard("back_to_main")...)
		}
		if text == "" {
			return sess, nil, reply("❌ Решение не должно быть пустым. Опишите решение по заявке:", cancelKeyboard()...)
		}
		eff := CompleteTicket{TicketID: sess.TargetTicket, Solution: text}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitDirectMessage:
		if !c.Role.IsStaff() {
			sess.Reset()
			return sess, nil, ReplyAccessDenied()
		}
		if sess.TargetChat == 0 {
			sess.Reset()
			return sess, nil, reply("❌ Ошибка: не найден пользователь.", backKeyboard("back_to_main")...)
		}
		eff := SendDirect{Chat: sess.TargetChat, Text: text}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitAgentID:
		if !agentIDPattern.MatchString(text) {
			return sess, nil, reply("❌ Неверный формат ID. Введите числовой Telegram ID (5-20 цифр):", cancelKeyboard()...)
		}
		chat, _ := strconv.ParseInt(text, 10, 64)
		sess.TargetChat = chat
		sess.State = StateAwaitAgentName
		return sess, nil, reply("✍️ Введите полное имя нового агента:", cancelKeyboard()...)

	case StateAwaitAgentName:
		if !m.triage.NamePattern.MatchString(text) {
			return sess, nil, reply("❌ Неверный формат имени. Введите полное имя агента:", cancelKeyboard()...)
		}
		eff := AddAgent{Chat: sess.TargetChat, Name: text}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitResidentChat:
		chat, err := strconv.ParseInt(text, 10, 64)
		if err != nil || chat <= 0 {
			return sess, nil, reply("❌ Неверный формат ID. Введите числовой Telegram ID:", cancelKeyboard()...)
		}
		sess.TargetChat = chat
		sess.State = StateAwaitResidentName
		return sess, nil, reply("✍️ Введите ФИО жителя:", cancelKeyboard()...)

	case StateAwaitResidentName:
		if !m.triage.NamePattern.MatchString(text) {
			return sess, nil, reply("❌ Неверный формат имени. Введите ФИО жителя:", cancelKeyboard()...)
		}
		sess.Name = text
		sess.State = StateAwaitResidentAddress
		return sess, nil, reply("🏠 Введите адрес жителя:", cancelKeyboard()...)

	case StateAwaitResidentAddress:
		if text == "" || len(text) > 255 {
			return sess, nil, reply("❌ Адрес не должен быть пустым или длиннее 255 символов. Попробуйте еще раз:", cancelKeyboard()...)
		}
		sess.Address = text
		sess.State = StateAwaitResidentPhone
		return sess, nil, reply("📱 Введите телефон жителя:", cancelKeyboard()...)

	case StateAwaitResidentPhone:
		phone, ok := m.normalizePhone(text)
		if !ok {
			return sess, nil, reply("❌ Неверный формат телефона. Попробуйте еще раз:", cancelKeyboard()...)
		}
		eff := AddResident{Chat: sess.TargetChat, Name: sess.Name, Address: sess.Address, Phone: phone}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitDeleteResident:
		chat, err := strconv.ParseInt(text, 10, 64)
		if err != nil || chat <= 0 {
			return sess, nil, reply("❌ Неверный формат ID. Введите числовой Telegram ID:", cancelKeyboard()...)
		}
		eff := DeleteResident{Chat: chat}
		sess.Reset()
		return sess, eff, Reply{}

	case StateAwaitRoleChat:
		chat, err := strconv.ParseInt(text, 10, 64)
		if err != nil || chat <= 0 {
			return sess, nil, reply("❌ Неверный формат ID. Введите числовой Telegram ID:", cancelKeyboard()...)
		}
		sess.TargetChat = chat
		sess.State = StateAwaitRoleValue
		return sess, nil, reply("🔑 Введите новую роль (visitor, resident, buyer, agent, admin):", cancelKeyboard()...)

	case StateAwaitRoleValue:
		role, sub, ok := parseRoleValue(text)
		if !ok {
			return sess, nil, reply("❌ Неизвестная роль. Введите одну из: visitor, resident, buyer, agent, admin:", cancelKeyboard()...)
		}
		eff := SetRole{Chat: sess.TargetChat, Role: role, SubType: sub}
		sess.Reset()
		return sess, eff, Reply{}
	}

	// An unknown tag means the stored session predates the current state
	// set; start the chat over rather than guessing.
	sess.Reset()
	return sess, nil, MainMenu(c.Role)
}

// normalizePhone strips spaces, dashes and parentheses, then validates the
// compact form against the configured pattern. "+7 707 123-45-67" and
// "+77071234567" are the same number.
func (m *Machine) normalizePhone(text string) (string, bool) {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case ' ', '-', '(', ')':
		default:
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if !m.triage.PhonePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}

// parseRoleValue maps the admin's text input to a role and sub-type.
// "buyer" keeps the visitor role but marks the prospective-buyer sub-type.
func parseRoleValue(text string) (model.Role, model.SubType, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "visitor":
		return model.RoleVisitor, model.SubTypeNone, true
	case "resident":
		return model.RoleResident, model.SubTypeResident, true
	case "buyer":
		return model.RoleVisitor, model.SubTypeBuyer, true
	case "agent":
		return model.RoleAgent, model.SubTypeNone, true
	case "admin":
		return model.RoleAdmin, model.SubTypeNone, true
	}
	return "", "", false
}
