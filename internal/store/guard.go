package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// Guard serializes record access: lookups share a read lock,
// inserts and updates take the write lock.
type Guard struct {
	mu   sync.RWMutex
	repo Repo
}

// NewGuard wraps repo.
func NewGuard(repo Repo) *Guard {
	return &Guard{repo: repo}
}

// Get looks up the record of user under the shared lock.
func (g *Guard) Get(ctx context.Context, user string) (*domain.Record, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.repo.Get(ctx, user)
}

// ListEnabled snapshots all enabled records under the shared lock.
func (g *Guard) ListEnabled(ctx context.Context) ([]domain.Record, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.repo.ListEnabled(ctx)
}

// Insert stores r under the exclusive lock unless a record of the same user
// already exists, and returns the stored record either way.
func (g *Guard) Insert(ctx context.Context, r domain.Record) (*domain.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cur, ok, err := g.repo.Get(ctx, r.User)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", r.User, err)
	}
	if ok {
		return cur, nil
	}
	if err := g.repo.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("store record %s: %w", r.User, err)
	}
	return &r, nil
}

// Update applies p to the current record of user in one exclusive section
// and returns the result. A missing record is created with defaults first.
func (g *Guard) Update(ctx context.Context, user string, p domain.RecordPatch) (*domain.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.repo.Get(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", user, err)
	}
	if !ok {
		def := domain.NewRecord(user)
		rec = &def
	}
	rec.Apply(p)
	if err := g.repo.Put(ctx, *rec); err != nil {
		return nil, fmt.Errorf("store record %s: %w", user, err)
	}
	return rec, nil
}

// Close closes the wrapped repository.
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.repo.Close()
}
