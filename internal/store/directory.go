package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ykvlv/ice-bot/internal/domain"
)

// Directory is the read-only user directory loaded at startup.
type Directory struct {
	byID   map[string]domain.Subject
	byChat map[int64]string
}

type directoryFile struct {
	Users []domain.Subject `yaml:"users"`
}

// LoadDirectory reads the YAML users file at path.
// A missing file yields an empty directory.
func LoadDirectory(path string) (*Directory, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewDirectory(nil), nil
	}
	if err != nil {
		return nil, err
	}
	var f directoryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, s := range f.Users {
		if s.ID == "" {
			return nil, fmt.Errorf("parse %s: user #%d has no id", path, i+1)
		}
	}
	return NewDirectory(f.Users), nil
}

// NewDirectory builds a directory from subjects. Later duplicates win.
func NewDirectory(subjects []domain.Subject) *Directory {
	d := &Directory{
		byID:   make(map[string]domain.Subject, len(subjects)),
		byChat: make(map[int64]string),
	}
	for _, s := range subjects {
		d.byID[s.ID] = s
		if s.ChatID != 0 {
			d.byChat[s.ChatID] = s.ID
		}
	}
	return d
}

// Subject returns the entry for id.
func (d *Directory) Subject(id string) (domain.Subject, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// UserByChat maps a Telegram chat to a user id.
func (d *Directory) UserByChat(chatID int64) (string, bool) {
	id, ok := d.byChat[chatID]
	return id, ok
}

// Len returns the number of known users.
func (d *Directory) Len() int { return len(d.byID) }
