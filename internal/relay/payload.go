// Package relay builds outbound feedback payloads and delivers them over mail or chat.
package relay

// Destination is the fixed destination of every outbound payload.
const Destination = "relay"

// DefaultSubject is used for mail payloads built without an explicit subject.
const DefaultSubject = "Zoe ICE"

// Payload is a structured outbound notification: a mail (Subject + Text)
// or a same-system message (Message).
type Payload struct {
	Dst     string `json:"dst"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Text    string `json:"txt,omitempty"`
	Message string `json:"msg,omitempty"`
}

// IsMail reports whether p is a mail payload.
func (p Payload) IsMail() bool {
	return p.Subject != ""
}

// Body returns the text carried by p regardless of its kind.
func (p Payload) Body() string {
	if p.IsMail() {
		return p.Text
	}
	return p.Message
}
