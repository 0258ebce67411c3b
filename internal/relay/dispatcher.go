package relay

import (
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/i18n"
)

// Directory resolves user ids to directory entries.
type Directory interface {
	Subject(id string) (domain.Subject, bool)
}

// Dispatcher builds feedback payloads for users.
type Dispatcher struct {
	dir Directory
	tr  *i18n.Translator
	log *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(dir Directory, tr *i18n.Translator, log *zap.Logger) *Dispatcher {
	return &Dispatcher{dir: dir, tr: tr, log: log}
}

// Text localizes key for user. Unknown users get the default locale.
func (d *Dispatcher) Text(user, key string, args ...any) string {
	var locale string
	if s, ok := d.dir.Subject(user); ok {
		locale = s.Locale
	}
	return d.tr.Sprintf(locale, key, args...)
}

// Feedback builds a payload carrying text for user.
// dst selects the channel; when empty the user's preferred channel is used,
// and a user missing from the directory abandons the feedback (nil result).
// subject only applies to mail and defaults to DefaultSubject.
func (d *Dispatcher) Feedback(user, text, dst, subject string) *Payload {
	channel := dst
	if channel == "" {
		s, ok := d.dir.Subject(user)
		if !ok {
			d.log.Info("cannot send message, user not found", zap.String("user", user))
			return nil
		}
		channel = s.PreferredChannel()
	}

	p := &Payload{Dst: Destination, To: user}
	if channel == domain.ChannelMail {
		if subject == "" {
			subject = DefaultSubject
		}
		p.Subject = subject
		p.Text = text
	} else {
		p.Message = text
	}
	return p
}

// Reply localizes key and builds feedback for user through dst.
func (d *Dispatcher) Reply(user, dst, key string, args ...any) *Payload {
	return d.Feedback(user, d.Text(user, key, args...), dst, "")
}

// Mail builds a mail payload with a raw (not localized) body.
// to may be a user id or a plain address.
func (d *Dispatcher) Mail(to, body, subject string) *Payload {
	return d.Feedback(to, body, domain.ChannelMail, subject)
}
