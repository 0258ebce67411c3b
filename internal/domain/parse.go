package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted ICE date format.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrDateInPast  = errors.New("date in the past")
	ErrUnknownUser = errors.New("unknown user")
	ErrDateNotSet  = fmt.Errorf("%w: not set", ErrInvalidDate)
)

// ParseDate parses s as YYYY-MM-DD, midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// ParseFutureDate parses s and requires it to be strictly after now.
func ParseFutureDate(s string, now time.Time) (time.Time, error) {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(now.UTC()) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrDateInPast, t.Format(DateLayout))
	}
	return t, nil
}

// NormalizeEmail trims surrounding whitespace and separators from an address.
func NormalizeEmail(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",;")
}

// SplitEmails splits free-form input ("a@x, b@x c@x") into addresses.
func SplitEmails(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = NormalizeEmail(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
