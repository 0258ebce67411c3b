package relay

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailConfig holds SMTP settings for MailSink.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// MailSink sends mail payloads over SMTP.
type MailSink struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	dir      Directory
	log      *zap.Logger
}

// NewMailSink creates a MailSink.
func NewMailSink(cfg MailConfig, dir Directory, log *zap.Logger) *MailSink {
	log.Info("initializing mail sink",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("user", cfg.User),
	)
	return &MailSink{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
		dir:      dir,
		log:      log,
	}
}

// Send implements Sink. ctx is not honored by the SMTP dialer.
func (s *MailSink) Send(_ context.Context, p Payload) error {
	addr, err := s.address(p.To)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.from, s.fromName)
	msg.SetHeader("To", addr)
	msg.SetHeader("Subject", p.Subject)
	msg.SetBody("text/plain", p.Body())

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", addr, err)
	}
	s.log.Debug("mail sent", zap.String("to", addr), zap.String("subject", p.Subject))
	return nil
}

// address resolves to: plain addresses are used as-is, user ids through the directory.
func (s *MailSink) address(to string) (string, error) {
	if strings.Contains(to, "@") {
		return to, nil
	}
	sub, ok := s.dir.Subject(to)
	if !ok || sub.Mail == "" {
		return "", fmt.Errorf("%w: no mail address for %q", ErrNoRoute, to)
	}
	return sub.Mail, nil
}
