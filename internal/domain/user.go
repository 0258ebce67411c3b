package domain

// Relay channels a subject may prefer for notifications.
const (
	ChannelMail     = "mail"
	ChannelTelegram = "telegram"
)

// Subject is an entry of the user directory: who a user is and how to reach them.
type Subject struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Mail      string `yaml:"mail"`
	Preferred string `yaml:"preferred"` // mail|telegram, empty means mail
	Locale    string `yaml:"locale"`
	ChatID    int64  `yaml:"chat_id"`
}

// PreferredChannel returns the relay channel for the subject, defaulting to mail.
func (s Subject) PreferredChannel() string {
	if s.Preferred == "" {
		return ChannelMail
	}
	return s.Preferred
}
