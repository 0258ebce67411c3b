package store

import (
	"encoding/json"
	"fmt"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// encodeRecord serializes a record into the JSON document stored per user.
func encodeRecord(r domain.Record) (string, error) {
	if r.Emails == nil {
		r.Emails = []string{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", r.User, err)
	}
	return string(b), nil
}

func decodeRecord(doc string) (*domain.Record, error) {
	var r domain.Record
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if r.Emails == nil {
		r.Emails = []string{}
	}
	return &r, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
