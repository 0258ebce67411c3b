package ice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/i18n"
	"github.com/ykvlv/ice-bot/internal/metrics"
	"github.com/ykvlv/ice-bot/internal/relay"
)

// Inbound command tags.
const (
	TagAddMails   = "add-mails"
	TagRmMails    = "rm-mails"
	TagSetMsg     = "set-msg"
	TagGetMsg     = "get-msg"
	TagSetDate    = "set-date"
	TagGetDate    = "get-date"
	TagEnableICE  = "enable-ice"
	TagDisableICE = "disable-ice"
	TagGetICE     = "get-ice"
	TagTestICE    = "test-ice"
)

// TestSubject is the subject of mails sent by test-ice.
const TestSubject = "Zoe ICE test"

// ErrUnknownCommand is returned for tags without a registered handler.
var ErrUnknownCommand = errors.New("unknown command")

// Command is an inbound request.
type Command struct {
	Tag     string   `json:"tag"`
	User    string   `json:"user"`
	Src     string   `json:"src,omitempty"`
	Emails  []string `json:"emails,omitempty"`
	Message string   `json:"message,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// HandlerFunc handles one command and returns the feedback to relay, if any.
type HandlerFunc func(ctx context.Context, cmd Command) (*relay.Payload, error)

// Registry maps command tags to handlers.
type Registry struct {
	svc      *Service
	fb       *relay.Dispatcher
	log      *zap.Logger
	handlers map[string]HandlerFunc
}

// NewRegistry creates a Registry with every ICE command registered.
func NewRegistry(svc *Service, fb *relay.Dispatcher, log *zap.Logger) *Registry {
	r := &Registry{svc: svc, fb: fb, log: log, handlers: make(map[string]HandlerFunc)}

	r.Register(TagAddMails, r.addMails)
	r.Register(TagRmMails, r.rmMails)
	r.Register(TagSetMsg, r.setMessage)
	r.Register(TagGetMsg, r.getMessage)
	r.Register(TagSetDate, r.setDate)
	r.Register(TagGetDate, r.getDate)
	r.Register(TagEnableICE, r.enable)
	r.Register(TagDisableICE, r.disable)
	r.Register(TagGetICE, r.getICE)
	r.Register(TagTestICE, r.test)
	return r
}

// Register binds tag to h, replacing any previous handler.
func (r *Registry) Register(tag string, h HandlerFunc) {
	r.handlers[tag] = h
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Handle dispatches cmd. Commands without a user are ignored.
func (r *Registry) Handle(ctx context.Context, cmd Command) (*relay.Payload, error) {
	h, ok := r.handlers[cmd.Tag]
	if !ok {
		metrics.CommandsHandled.WithLabelValues("unknown", "rejected").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Tag)
	}
	if cmd.User == "" {
		r.log.Debug("command without user ignored", zap.String("tag", cmd.Tag))
		metrics.CommandsHandled.WithLabelValues(cmd.Tag, "ignored").Inc()
		return nil, nil
	}

	p, err := h(ctx, cmd)
	if err != nil {
		metrics.CommandsHandled.WithLabelValues(cmd.Tag, "error").Inc()
		r.log.Error("command failed",
			zap.String("tag", cmd.Tag),
			zap.String("user", cmd.User),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.CommandsHandled.WithLabelValues(cmd.Tag, "ok").Inc()
	return p, nil
}

// dateFeedback turns date validation errors into feedback; other errors pass through.
func (r *Registry) dateFeedback(cmd Command, err error) (*relay.Payload, error) {
	switch {
	case errors.Is(err, domain.ErrDateInPast):
		return r.fb.Reply(cmd.User, cmd.Src, i18n.DateInPast), nil
	case errors.Is(err, domain.ErrInvalidDate):
		return r.fb.Reply(cmd.User, cmd.Src, i18n.DateInvalid), nil
	}
	return nil, err
}

func (r *Registry) addMails(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.AddEmails(ctx, cmd.User, cmd.Emails); err != nil {
		return nil, err
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.MailsUpdated), nil
}

func (r *Registry) rmMails(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.RemoveEmails(ctx, cmd.User, cmd.Emails); err != nil {
		return nil, err
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.MailsUpdated), nil
}

func (r *Registry) setMessage(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.SetMessage(ctx, cmd.User, cmd.Message); err != nil {
		return nil, err
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.MsgUpdated), nil
}

func (r *Registry) getMessage(ctx context.Context, cmd Command) (*relay.Payload, error) {
	msg, err := r.svc.GetMessage(ctx, cmd.User)
	if err != nil {
		return nil, err
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.MsgShow, msg), nil
}

func (r *Registry) setDate(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.SetDate(ctx, cmd.User, cmd.Date); err != nil {
		return r.dateFeedback(cmd, err)
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.DateUpdated), nil
}

func (r *Registry) getDate(ctx context.Context, cmd Command) (*relay.Payload, error) {
	date, err := r.svc.GetDate(ctx, cmd.User)
	if err != nil {
		return nil, err
	}
	if date == "" {
		date = r.fb.Text(cmd.User, i18n.DateNotSet)
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.DateShow, date), nil
}

func (r *Registry) enable(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.Enable(ctx, cmd.User); err != nil {
		return r.dateFeedback(cmd, err)
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.ICEEnabled), nil
}

func (r *Registry) disable(ctx context.Context, cmd Command) (*relay.Payload, error) {
	if _, err := r.svc.Disable(ctx, cmd.User); err != nil {
		return nil, err
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.ICEDisabled), nil
}

func (r *Registry) getICE(ctx context.Context, cmd Command) (*relay.Payload, error) {
	sum, err := r.svc.Summary(ctx, cmd.User)
	if err != nil {
		return nil, err
	}
	date := sum.Date
	if date == "" {
		date = r.fb.Text(cmd.User, i18n.DateNotSet)
	}
	status := r.fb.Text(cmd.User, i18n.ICEDisabled)
	if sum.Enabled {
		status = r.fb.Text(cmd.User, i18n.ICEEnabled)
	}
	return r.fb.Reply(cmd.User, cmd.Src, i18n.InfoRecord, sum.Emails, date, status), nil
}

// test mails the current message to the user, ignoring enabled and date.
func (r *Registry) test(ctx context.Context, cmd Command) (*relay.Payload, error) {
	rec, err := r.svc.GetOrCreate(ctx, cmd.User)
	if err != nil {
		return nil, err
	}
	return r.fb.Mail(cmd.User, rec.Message, TestSubject), nil
}
