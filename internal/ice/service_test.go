package ice

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/store"
)

// fixed clock: 2030-06-15 10:00 UTC
var testNow = time.Date(2030, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Guard) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ice.db"), zap.NewNop())
	require.NoError(t, err)
	g := store.NewGuard(repo)
	t.Cleanup(func() { _ = g.Close() })
	return NewService(g, zap.NewNop(), WithClock(func() time.Time { return testNow })), g
}

func TestGetOrCreateDefaults(t *testing.T) {
	svc, g := newTestService(t)
	ctx := context.Background()

	rec, err := svc.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.User)
	assert.Empty(t, rec.Emails)
	assert.Equal(t, "", rec.Message)
	assert.False(t, rec.Enabled)
	assert.Nil(t, rec.Date)

	_, ok, err := g.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok, "record must be persisted on first access")
}

func TestEmailsRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddEmails(ctx, "alice", []string{"keep@x.com"})
	require.NoError(t, err)

	rec, err := svc.AddEmails(ctx, "alice", []string{"a@x.com", "b@x.com", "a@x.com", "keep@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "keep@x.com"}, rec.Emails)

	rec, err = svc.RemoveEmails(ctx, "alice", []string{"a@x.com", "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep@x.com"}, rec.Emails)
}

func TestSetDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.SetDate(ctx, "alice", "2099-01-01")
	require.NoError(t, err)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2099-01-01", *rec.Date)
	assert.False(t, rec.Enabled, "set-date must not enable")

	_, err = svc.SetDate(ctx, "alice", "2099-13-40")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = svc.SetDate(ctx, "alice", "2000-01-01")
	assert.ErrorIs(t, err, domain.ErrDateInPast)

	date, err := svc.GetDate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2099-01-01", date, "failed set-date must keep the stored date")
}

func TestSetDateKeepsEnabled(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetDate(ctx, "alice", "2099-01-01")
	require.NoError(t, err)
	_, err = svc.Enable(ctx, "alice")
	require.NoError(t, err)

	rec, err := svc.SetDate(ctx, "alice", "2098-01-01")
	require.NoError(t, err)
	assert.True(t, rec.Enabled)
}

func TestEnable(t *testing.T) {
	svc, g := newTestService(t)
	ctx := context.Background()

	// no date at all
	_, err := svc.Enable(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	// today is not strictly in the future
	_, err = g.Update(ctx, "alice", domain.RecordPatch{Date: domain.Ptr("2030-06-15")})
	require.NoError(t, err)
	rec, err := svc.Enable(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrDateInPast)
	assert.False(t, rec.Enabled)

	_, err = g.Update(ctx, "alice", domain.RecordPatch{Date: domain.Ptr("2030-06-16")})
	require.NoError(t, err)
	rec, err = svc.Enable(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, rec.Enabled)

	rec, err = svc.Disable(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, rec.Enabled)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2030-06-16", *rec.Date)
}

func TestSetMessageAndSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetMessage(ctx, "alice", "hi")
	require.NoError(t, err)
	_, err = svc.AddEmails(ctx, "alice", []string{"b@x.com", "a@x.com"})
	require.NoError(t, err)

	msg, err := svc.GetMessage(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg)

	sum, err := svc.Summary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Summary{Emails: "a@x.com, b@x.com"}, sum)
}

func TestAddThenRemoveComposeSequentially(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// each goroutine issues add then remove back-to-back
			_, err := svc.AddEmails(ctx, "alice", []string{"a@x.com"})
			assert.NoError(t, err)
			_, err = svc.RemoveEmails(ctx, "alice", []string{"a@x.com"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := svc.AddEmails(ctx, "alice", []string{"a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, rec.Emails)
	rec, err = svc.RemoveEmails(ctx, "alice", []string{"a@x.com"})
	require.NoError(t, err)
	assert.Empty(t, rec.Emails)
}

// racingRecords runs an update right after the first lookup misses,
// as if a concurrent command slipped in between lookup and insert.
type racingRecords struct {
	*store.Guard
	once  sync.Once
	patch domain.RecordPatch
}

func (r *racingRecords) Get(ctx context.Context, user string) (*domain.Record, bool, error) {
	rec, ok, err := r.Guard.Get(ctx, user)
	if err == nil && !ok {
		r.once.Do(func() { _, err = r.Guard.Update(ctx, user, r.patch) })
	}
	return rec, ok, err
}

func TestGetOrCreateKeepsConcurrentUpdate(t *testing.T) {
	_, g := newTestService(t)
	ctx := context.Background()
	recs := &racingRecords{Guard: g, patch: domain.RecordPatch{AddEmails: []string{"a@x.com"}}}
	svc := NewService(recs, zap.NewNop(), WithClock(func() time.Time { return testNow }))

	date, err := svc.GetDate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "", date)

	stored, ok, err := g.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a@x.com"}, stored.Emails)
}
