package domain

import "time"

// IsDue reports whether an enabled record should be delivered at now.
// A record whose date cannot be parsed is never due; the error is returned instead.
func IsDue(r Record, now time.Time) (bool, error) {
	if r.Date == nil {
		return false, ErrDateNotSet
	}
	t, err := ParseDate(*r.Date)
	if err != nil {
		return false, err
	}
	return !t.After(now.UTC()), nil
}

// CanEnable checks that the stored date still lies strictly in the future.
func CanEnable(r Record, now time.Time) error {
	if r.Date == nil {
		return ErrDateNotSet
	}
	_, err := ParseFutureDate(*r.Date, now)
	return err
}
