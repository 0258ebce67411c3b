package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/i18n"
	"github.com/ykvlv/ice-bot/internal/relay"
	"github.com/ykvlv/ice-bot/internal/store"
)

var testNow = time.Date(2030, time.June, 15, 10, 0, 0, 0, time.UTC)

type recordingSink struct {
	sent []relay.Payload
	err  error
}

func (s *recordingSink) Send(_ context.Context, p relay.Payload) error {
	s.sent = append(s.sent, p)
	return s.err
}

func setup(t *testing.T) (*store.Guard, *recordingSink, *Scheduler) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ice.db"), zap.NewNop())
	require.NoError(t, err)
	g := store.NewGuard(repo)
	t.Cleanup(func() { _ = g.Close() })

	dir := store.NewDirectory([]domain.Subject{
		{ID: "alice", Mail: "alice@example.com"},
		{ID: "bob", Preferred: domain.ChannelTelegram, ChatID: 7},
	})
	sink := &recordingSink{}
	fb := relay.NewDispatcher(dir, i18n.New("en"), zap.NewNop())
	s := New(g, fb, sink, zap.NewNop(), 0).WithClock(func() time.Time { return testNow })
	return g, sink, s
}

func arm(t *testing.T, g *store.Guard, user, date string, emails []string, msg string) {
	t.Helper()
	_, err := g.Update(context.Background(), user, domain.RecordPatch{
		AddEmails: emails,
		Message:   domain.Ptr(msg),
		Date:      domain.Ptr(date),
		Enabled:   domain.Ptr(true),
	})
	require.NoError(t, err)
}

func enabled(t *testing.T, g *store.Guard, user string) bool {
	t.Helper()
	rec, ok, err := g.Get(context.Background(), user)
	require.NoError(t, err)
	require.True(t, ok)
	return rec.Enabled
}

func TestSweepDeliversDueRecord(t *testing.T) {
	g, sink, s := setup(t)
	arm(t, g, "alice", "2030-06-14", []string{"a@x.com", "b@x.com"}, "hi")

	rep := s.Sweep(context.Background())
	assert.Equal(t, Report{Checked: 1, Delivered: 1}, rep)

	require.Len(t, sink.sent, 3)
	assert.Equal(t, relay.Payload{Dst: relay.Destination, To: "a@x.com", Subject: relay.DefaultSubject, Text: "hi"}, sink.sent[0])
	assert.Equal(t, relay.Payload{Dst: relay.Destination, To: "b@x.com", Subject: relay.DefaultSubject, Text: "hi"}, sink.sent[1])
	assert.Equal(t, "alice", sink.sent[2].To)
	assert.Equal(t, "Your ICE message has been delivered.", sink.sent[2].Body())

	assert.False(t, enabled(t, g, "alice"))

	// single shot: a second sweep finds nothing
	sink.sent = nil
	rep = s.Sweep(context.Background())
	assert.Equal(t, Report{}, rep)
	assert.Empty(t, sink.sent)
}

func TestSweepSkipsFutureRecord(t *testing.T) {
	g, sink, s := setup(t)
	arm(t, g, "alice", "2030-06-16", []string{"a@x.com"}, "hi")

	rep := s.Sweep(context.Background())
	assert.Equal(t, Report{Checked: 1, Pending: 1}, rep)
	assert.Empty(t, sink.sent)
	assert.True(t, enabled(t, g, "alice"))
}

func TestSweepInvalidDateKeepsRecordEnabled(t *testing.T) {
	g, sink, s := setup(t)
	arm(t, g, "bob", "someday", nil, "hi")
	arm(t, g, "alice", "2030-06-14", []string{"a@x.com"}, "bye")

	rep := s.Sweep(context.Background())
	assert.Equal(t, Report{Checked: 2, Delivered: 1, Invalid: 1}, rep)

	var invalid []relay.Payload
	for _, p := range sink.sent {
		if p.To == "bob" {
			invalid = append(invalid, p)
		}
	}
	require.Len(t, invalid, 1)
	assert.Equal(t, "The date is not valid, use the YYYY-MM-DD format.", invalid[0].Message)

	assert.True(t, enabled(t, g, "bob"))
	assert.False(t, enabled(t, g, "alice"))
}

func TestSweepDisablesEvenWhenSendFails(t *testing.T) {
	g, sink, s := setup(t)
	sink.err = errors.New("smtp down")
	arm(t, g, "alice", "2030-06-14", []string{"a@x.com", "b@x.com"}, "hi")

	rep := s.Sweep(context.Background())
	assert.Equal(t, 1, rep.Delivered)
	assert.Len(t, sink.sent, 3, "every recipient is still attempted")
	assert.False(t, enabled(t, g, "alice"))
}

func TestSweepUnknownOwnerStillDelivers(t *testing.T) {
	g, sink, s := setup(t)
	arm(t, g, "carol", "2030-06-14", []string{"a@x.com"}, "hi")

	rep := s.Sweep(context.Background())
	assert.Equal(t, 1, rep.Delivered)
	// recipient mail only; the owner notification is abandoned
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "a@x.com", sink.sent[0].To)
	assert.False(t, enabled(t, g, "carol"))
}

func TestRunStopsOnCancel(t *testing.T) {
	_, _, s := setup(t)
	s.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
