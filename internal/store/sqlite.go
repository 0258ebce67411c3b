package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// SQLiteRepo implements Repo as a document store: one JSON document per user.
type SQLiteRepo struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, log: log}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Get returns the record of a user. The boolean reports whether it exists.
func (r *SQLiteRepo) Get(ctx context.Context, user string) (*domain.Record, bool, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM records WHERE user_id = ?`, user).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err := decodeRecord(doc)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Put inserts the record or replaces the existing document for the same user.
func (r *SQLiteRepo) Put(ctx context.Context, rec domain.Record) error {
	if rec.User == "" {
		return errors.New("record without user")
	}
	doc, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records (user_id, enabled, doc, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			enabled    = excluded.enabled,
			doc        = excluded.doc,
			updated_at = excluded.updated_at`,
		rec.User, boolToInt(rec.Enabled), doc, time.Now().UTC().Unix(),
	)
	return err
}

// ListEnabled returns every record with enabled set, ordered by user.
// Documents that fail to decode are logged and skipped.
func (r *SQLiteRepo) ListEnabled(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT doc FROM records
		WHERE enabled = 1
		ORDER BY user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(doc)
		if err != nil {
			r.log.Error("skipping undecodable record", zap.String("doc", doc), zap.Error(err))
			continue
		}
		res = append(res, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
