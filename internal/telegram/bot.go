package telegram

import (
	"context"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatSerializer runs work one item at a time per chat while distinct chats
// proceed concurrently. Updates from one chat must be handled in arrival
// order: the session transition is a read-modify-write, and two interleaved
// steps on the same chat would judge both inputs against the same tag.
type chatSerializer struct {
	mu     sync.Mutex
	queues map[int64]chan func()
}

func newChatSerializer() *chatSerializer {
	return &chatSerializer{queues: make(map[int64]chan func())}
}

// do enqueues fn behind any earlier work for the same chat. The per-chat
// worker goroutine lives for the rest of the process; the set of active
// chats bounds the total.
func (s *chatSerializer) do(chat int64, fn func()) {
	s.mu.Lock()
	q, ok := s.queues[chat]
	if !ok {
		q = make(chan func(), 16)
		s.queues[chat] = q
		go func() {
			for f := range q {
				f()
			}
		}()
	}
	s.mu.Unlock()
	q <- fn
}

// Bot runs the long-poll loop, handing each update to the handler. Updates
// are serialized per chat and concurrent across chats.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	serial  *chatSerializer
}

func NewBot(api *tgbotapi.BotAPI, handler *Handler) *Bot {
	return &Bot{api: api, handler: handler, serial: newChatSerializer()}
}

func updateChat(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil:
		return upd.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return upd.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// Run blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	log.Printf("telegram: polling as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			chat := updateChat(upd)
			if chat == 0 {
				// No chat to key on, nothing session-backed to protect.
				go b.handler.HandleUpdate(ctx, upd)
				continue
			}
			b.serial.do(chat, func() { b.handler.HandleUpdate(ctx, upd) })
		}
	}
}
