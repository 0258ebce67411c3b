package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/i18n"
	"github.com/ykvlv/ice-bot/internal/metrics"
	"github.com/ykvlv/ice-bot/internal/relay"
)

// DefaultInterval is the sweep period.
const DefaultInterval = 300 * time.Second

// Records is the subset of the guarded store the scheduler needs.
type Records interface {
	ListEnabled(ctx context.Context) ([]domain.Record, error)
	Update(ctx context.Context, user string, p domain.RecordPatch) (*domain.Record, error)
}

// Scheduler periodically sweeps enabled records and delivers the due ones.
type Scheduler struct {
	records  Records
	fb       *relay.Dispatcher
	sink     relay.Sink
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// Report summarizes one sweep.
type Report struct {
	Checked   int
	Delivered int
	Invalid   int
	Pending   int
}

// New creates a Scheduler. A non-positive interval falls back to DefaultInterval.
func New(records Records, fb *relay.Dispatcher, sink relay.Sink, log *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		records:  records,
		fb:       fb,
		sink:     sink,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock overrides the time source and returns s.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one delivery cycle. Errors on one record never stop the others.
func (s *Scheduler) Sweep(ctx context.Context) Report {
	now := s.now().UTC()
	log := s.log.With(zap.String("sweep_id", uuid.NewString()))
	metrics.Sweeps.Inc()

	var rep Report
	records, err := s.records.ListEnabled(ctx)
	if err != nil {
		log.Error("ListEnabled failed", zap.Error(err))
		return rep
	}
	if len(records) == 0 {
		log.Info("no enabled ICE records", zap.String("at", now.Format("2006-01-02 15:04:05")))
		return rep
	}

	for _, rec := range records {
		rep.Checked++

		due, err := domain.IsDue(rec, now)
		if err != nil {
			// Left enabled: the user keeps being told until the date is fixed.
			rep.Invalid++
			metrics.InvalidDates.Inc()
			log.Warn("enabled record with invalid date", zap.String("user", rec.User), zap.Error(err))
			s.send(ctx, log, s.fb.Reply(rec.User, "", i18n.DateInvalid))
			continue
		}
		if !due {
			rep.Pending++
			continue
		}

		s.deliver(ctx, log, rec)
		rep.Delivered++
	}

	log.Info("sweep finished",
		zap.Int("checked", rep.Checked),
		zap.Int("delivered", rep.Delivered),
		zap.Int("invalid", rep.Invalid),
		zap.Int("pending", rep.Pending),
	)
	return rep
}

// deliver mails the message to every recipient, notifies the owner and disarms the record.
// Send failures are logged only.
func (s *Scheduler) deliver(ctx context.Context, log *zap.Logger, rec domain.Record) {
	for _, addr := range rec.Emails {
		s.send(ctx, log, s.fb.Mail(addr, rec.Message, relay.DefaultSubject))
	}
	s.send(ctx, log, s.fb.Reply(rec.User, "", i18n.ICESent))

	if _, err := s.records.Update(ctx, rec.User, domain.RecordPatch{Enabled: domain.Ptr(false)}); err != nil {
		log.Error("disable after delivery failed", zap.String("user", rec.User), zap.Error(err))
		return
	}
	metrics.Deliveries.Inc()
	log.Info("ICE delivered", zap.String("user", rec.User), zap.Int("recipients", len(rec.Emails)))
}

func (s *Scheduler) send(ctx context.Context, log *zap.Logger, p *relay.Payload) {
	if p == nil {
		return
	}
	if err := s.sink.Send(ctx, *p); err != nil {
		log.Error("send failed", zap.String("to", p.To), zap.Error(err))
	}
}
