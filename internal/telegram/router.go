package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/ice"
	"github.com/ykvlv/ice-bot/internal/relay"
)

// Handler executes ICE commands (ice.Registry).
type Handler interface {
	Handle(ctx context.Context, cmd ice.Command) (*relay.Payload, error)
}

// Sender is the part of the Bot API the router talks through (*tgbotapi.BotAPI).
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Users maps chats to directory users.
type Users interface {
	UserByChat(chatID int64) (string, bool)
}

// Router wires Telegram updates to ICE commands and holds minimal in-memory state.
type Router struct {
	bot     Sender
	log     *zap.Logger
	handler Handler
	users   Users
	sink    relay.Sink
	state   map[int64]string // chatID -> pending state
	mu      sync.RWMutex
}

// NewRouter creates a new Telegram router. Feedback is delivered through sink,
// which is usually a relay.Mux whose chat side is this router.
func NewRouter(bot Sender, log *zap.Logger, handler Handler, users Users) *Router {
	return &Router{
		bot:     bot,
		log:     log,
		handler: handler,
		users:   users,
		state:   make(map[int64]string),
	}
}

// SetSink sets where command feedback goes.
func (r *Router) SetSink(sink relay.Sink) {
	r.sink = sink
}

func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// takePending returns and clears the pending state for a chat.
func (r *Router) takePending(chatID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state[chatID]
	delete(r.state, chatID)
	return s
}

// HandleUpdate routes a single update. Chats unknown to the directory are ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	chatID := upd.Message.Chat.ID
	text := strings.TrimSpace(upd.Message.Text)

	user, ok := r.users.UserByChat(chatID)
	if !ok {
		r.log.Info("message from unknown chat ignored", zap.Int64("chatID", chatID))
		return
	}

	if strings.HasPrefix(text, "/start") || strings.HasPrefix(text, "/help") {
		msg := tgbotapi.NewMessage(chatID, helpText)
		msg.ReplyMarkup = mainMenuKeyboard()
		_, _ = r.bot.Send(msg)
		return
	}

	if strings.HasPrefix(text, "/") {
		r.takePending(chatID) // a new command aborts any pending flow
		cmd, ask, ok := parseCommand(user, text)
		switch {
		case !ok:
			r.sendText(chatID, helpText)
		case ask == pendingMessage:
			r.setPending(chatID, ask)
			r.sendText(chatID, askMessageText)
		case ask == pendingDate:
			r.setPending(chatID, ask)
			r.sendText(chatID, askDateText)
		default:
			r.dispatch(ctx, chatID, cmd)
		}
		return
	}

	// Free-form text completes a pending flow, otherwise it is ignored.
	state := r.takePending(chatID)
	if state == pendingMessage && len(text) > maxMessageLen {
		r.sendText(chatID, tooLongText)
		return
	}
	if cmd, ok := completePending(user, state, text); ok {
		r.dispatch(ctx, chatID, cmd)
	}
}

func (r *Router) dispatch(ctx context.Context, chatID int64, cmd ice.Command) {
	p, err := r.handler.Handle(ctx, cmd)
	if err != nil {
		r.sendText(chatID, failureText)
		return
	}
	if p == nil || r.sink == nil {
		return
	}
	if err := r.sink.Send(ctx, *p); err != nil {
		r.log.Error("feedback send failed", zap.String("tag", cmd.Tag), zap.Error(err))
	}
}

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy relay.ChatSender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
