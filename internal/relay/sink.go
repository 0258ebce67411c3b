package relay

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/metrics"
)

// ErrNoRoute is returned when a payload cannot be mapped to a recipient.
var ErrNoRoute = errors.New("no route for payload")

// Sink delivers payloads.
type Sink interface {
	Send(ctx context.Context, p Payload) error
}

// Mux sends mail payloads through mail and messages through chat.
// Without a chat sink, messages are mailed with the default subject.
type Mux struct {
	mail Sink
	chat Sink
	log  *zap.Logger
}

// NewMux creates a Mux. chat may be nil.
func NewMux(mail, chat Sink, log *zap.Logger) *Mux {
	return &Mux{mail: mail, chat: chat, log: log}
}

// Send implements Sink.
func (m *Mux) Send(ctx context.Context, p Payload) error {
	channel, sink := "mail", m.mail
	if !p.IsMail() {
		if m.chat != nil {
			channel, sink = "chat", m.chat
		} else {
			p.Subject, p.Text, p.Message = DefaultSubject, p.Message, ""
		}
	}

	if err := sink.Send(ctx, p); err != nil {
		metrics.RelayFailed.WithLabelValues(channel).Inc()
		m.log.Warn("relay send failed",
			zap.String("channel", channel),
			zap.String("to", p.To),
			zap.Error(err),
		)
		return err
	}
	metrics.RelaySent.WithLabelValues(channel).Inc()
	return nil
}

// LogSink only logs payloads. Used when no SMTP server is configured.
type LogSink struct{ log *zap.Logger }

// NewLogSink creates a LogSink.
func NewLogSink(log *zap.Logger) *LogSink { return &LogSink{log: log} }

// Send implements Sink.
func (s *LogSink) Send(_ context.Context, p Payload) error {
	s.log.Info("relay payload (dry run)",
		zap.String("to", p.To),
		zap.String("subject", p.Subject),
		zap.String("body", p.Body()),
	)
	return nil
}
