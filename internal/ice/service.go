// Package ice implements the ICE record lifecycle and the inbound command table.
package ice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// Records is the guarded record store (store.Guard).
type Records interface {
	Get(ctx context.Context, user string) (*domain.Record, bool, error)
	Insert(ctx context.Context, r domain.Record) (*domain.Record, error)
	Update(ctx context.Context, user string, p domain.RecordPatch) (*domain.Record, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service manages per-user ICE records.
type Service struct {
	records Records
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates a Service.
func NewService(records Records, log *zap.Logger, opts ...Option) *Service {
	s := &Service{records: records, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the current UTC time of the service clock.
func (s *Service) Now() time.Time { return s.now().UTC() }

// GetOrCreate returns the record of user, inserting a default one on first access.
func (s *Service) GetOrCreate(ctx context.Context, user string) (*domain.Record, error) {
	rec, ok, err := s.records.Get(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", user, err)
	}
	if ok {
		return rec, nil
	}

	// Another writer may have created the record since the lookup; Insert
	// keeps theirs.
	rec, err = s.records.Insert(ctx, domain.NewRecord(user))
	if err != nil {
		return nil, fmt.Errorf("insert record %s: %w", user, err)
	}
	s.log.Debug("record created", zap.String("user", user))
	return rec, nil
}

// AddEmails adds addresses to the recipient set of user.
func (s *Service) AddEmails(ctx context.Context, user string, emails []string) (*domain.Record, error) {
	return s.records.Update(ctx, user, domain.RecordPatch{AddEmails: emails})
}

// RemoveEmails removes addresses from the recipient set of user.
func (s *Service) RemoveEmails(ctx context.Context, user string, emails []string) (*domain.Record, error) {
	return s.records.Update(ctx, user, domain.RecordPatch{RemoveEmails: emails})
}

// SetMessage overwrites the message body. Date and enabled are untouched.
func (s *Service) SetMessage(ctx context.Context, user, text string) (*domain.Record, error) {
	return s.records.Update(ctx, user, domain.RecordPatch{Message: &text})
}

// SetDate validates date and stores it. It does not enable the record.
// On ErrInvalidDate or ErrDateInPast the stored date is left unchanged.
func (s *Service) SetDate(ctx context.Context, user, date string) (*domain.Record, error) {
	rec, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}
	t, err := domain.ParseFutureDate(date, s.Now())
	if err != nil {
		return rec, err
	}
	return s.records.Update(ctx, user, domain.RecordPatch{Date: domain.Ptr(t.Format(domain.DateLayout))})
}

// Enable arms the record if its stored date still lies in the future.
func (s *Service) Enable(ctx context.Context, user string) (*domain.Record, error) {
	rec, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := domain.CanEnable(*rec, s.Now()); err != nil {
		return rec, err
	}
	return s.records.Update(ctx, user, domain.RecordPatch{Enabled: domain.Ptr(true)})
}

// Disable disarms the record. The date is kept.
func (s *Service) Disable(ctx context.Context, user string) (*domain.Record, error) {
	return s.records.Update(ctx, user, domain.RecordPatch{Enabled: domain.Ptr(false)})
}

// GetDate returns the stored date, empty if never set.
func (s *Service) GetDate(ctx context.Context, user string) (string, error) {
	rec, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return "", err
	}
	if rec.Date == nil {
		return "", nil
	}
	return *rec.Date, nil
}

// GetMessage returns the stored message body.
func (s *Service) GetMessage(ctx context.Context, user string) (string, error) {
	rec, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return "", err
	}
	return rec.Message, nil
}

// Summary is a read-only view of a record.
type Summary struct {
	Emails  string // comma-joined
	Date    string // empty if not set
	Enabled bool
}

// Summary returns the recipients, date and status of user's record.
func (s *Service) Summary(ctx context.Context, user string) (Summary, error) {
	rec, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Emails:  strings.Join(rec.Emails, ", "),
		Enabled: rec.Enabled,
	}
	if rec.Date != nil {
		sum.Date = *rec.Date
	}
	return sum, nil
}
