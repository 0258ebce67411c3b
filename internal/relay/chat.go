package relay

import (
	"context"
	"fmt"
)

// ChatSender sends a plain text message to a chat.
// telegram.Router implements it.
type ChatSender interface {
	SendMessage(chatID int64, text string) error
}

// ChatSink delivers message payloads to the user's chat.
type ChatSink struct {
	sender ChatSender
	dir    Directory
}

// NewChatSink creates a ChatSink.
func NewChatSink(sender ChatSender, dir Directory) *ChatSink {
	return &ChatSink{sender: sender, dir: dir}
}

// Send implements Sink.
func (s *ChatSink) Send(_ context.Context, p Payload) error {
	sub, ok := s.dir.Subject(p.To)
	if !ok || sub.ChatID == 0 {
		return fmt.Errorf("%w: no chat for %q", ErrNoRoute, p.To)
	}
	return s.sender.SendMessage(sub.ChatID, p.Body())
}
