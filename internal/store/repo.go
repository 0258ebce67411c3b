package store

import (
	"context"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// Repo defines raw storage operations for ICE records.
// Callers go through Guard, which serializes access.
type Repo interface {
	Get(ctx context.Context, user string) (*domain.Record, bool, error)
	Put(ctx context.Context, r domain.Record) error
	ListEnabled(ctx context.Context) ([]domain.Record, error)
	Close() error
}
