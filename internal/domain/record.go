package domain

import "sort"

// Record is the per-user ICE state. One record exists per user.
type Record struct {
	User    string   `json:"user"`
	Emails  []string `json:"emails"`
	Message string   `json:"message"`
	Enabled bool     `json:"enabled"`
	Date    *string  `json:"date"` // YYYY-MM-DD, nil if never set
}

// NewRecord returns a record with default values for the given user.
func NewRecord(user string) Record {
	return Record{
		User:   user,
		Emails: []string{},
	}
}

// RecordPatch lists the fields an update touches. Nil/empty fields are left alone.
// Email additions are applied before removals.
type RecordPatch struct {
	AddEmails    []string
	RemoveEmails []string
	Message      *string
	Enabled      *bool
	Date         *string
}

// Apply merges p into r.
func (r *Record) Apply(p RecordPatch) {
	if len(p.AddEmails) > 0 {
		r.Emails = UnionEmails(r.Emails, p.AddEmails)
	}
	if len(p.RemoveEmails) > 0 {
		r.Emails = SubtractEmails(r.Emails, p.RemoveEmails)
	}
	if p.Message != nil {
		r.Message = *p.Message
	}
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.Date != nil {
		d := *p.Date
		r.Date = &d
	}
}

// UnionEmails returns the sorted set union of a and b.
func UnionEmails(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, e := range a {
		addEmail(set, e)
	}
	for _, e := range b {
		addEmail(set, e)
	}
	return sortedKeys(set)
}

// SubtractEmails returns the sorted set of addresses in a that are not in b.
func SubtractEmails(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, e := range a {
		addEmail(set, e)
	}
	for _, e := range b {
		delete(set, NormalizeEmail(e))
	}
	return sortedKeys(set)
}

func addEmail(set map[string]struct{}, e string) {
	if e = NormalizeEmail(e); e != "" {
		set[e] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }
