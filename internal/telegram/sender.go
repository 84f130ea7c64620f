// Package telegram adapts the chat transport: it turns Bot API updates
// into dialogue inputs, executes the effects the state machine emits, and
// renders replies back as messages with inline keyboards.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sunqar/zhk-support-bot/internal/dialog"
)

// Sender wraps the outbound half of the Bot API. It satisfies
// notify.Sender so the dispatcher can fan out through the same client.
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender { return &Sender{api: api} }

// SendText delivers a plain message to one chat.
func (s *Sender) SendText(_ context.Context, chatID int64, text string) error {
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

// SendReply renders a dialog reply and returns the sent message id for the
// delete-previous-message bookkeeping.
func (s *Sender) SendReply(chatID int64, r dialog.Reply) (int, error) {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if kb, ok := keyboard(r.Keyboard); ok {
		msg.ReplyMarkup = kb
	}
	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send reply to %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendDocument delivers a file, used for PDF reports.
func (s *Sender) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := s.api.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", chatID, err)
	}
	return nil
}

// DeleteMessage removes a previously sent bot message. Failures are
// expected (message too old, already gone) and are the caller's to ignore.
func (s *Sender) DeleteMessage(chatID int64, messageID int) error {
	_, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func keyboard(rows [][]dialog.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		var row []tgbotapi.InlineKeyboardButton
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kb = append(kb, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...), true
}
