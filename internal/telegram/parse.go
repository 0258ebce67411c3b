package telegram

import (
	"strings"

	"github.com/ykvlv/ice-bot/internal/domain"
	"github.com/ykvlv/ice-bot/internal/ice"
)

// Source identifies commands coming from this transport.
const Source = domain.ChannelTelegram

// Pending state keys used in conversational flows.
const (
	pendingMessage = "await_message_text"
	pendingDate    = "await_date_text"
)

// parseCommand turns a slash command into an ICE command.
// ask is a pending state when the command needs a follow-up message;
// ok is false for text that is not a known command.
func parseCommand(user, text string) (cmd ice.Command, ask string, ok bool) {
	name, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@") // /cmd@botname
	args = strings.TrimSpace(args)

	cmd = ice.Command{User: user, Src: Source}
	switch name {
	case "/add_mails":
		cmd.Tag, cmd.Emails = ice.TagAddMails, domain.SplitEmails(args)
	case "/rm_mails":
		cmd.Tag, cmd.Emails = ice.TagRmMails, domain.SplitEmails(args)
	case "/set_msg":
		if args == "" {
			return cmd, pendingMessage, true
		}
		cmd.Tag, cmd.Message = ice.TagSetMsg, args
	case "/get_msg":
		cmd.Tag = ice.TagGetMsg
	case "/set_date":
		if args == "" {
			return cmd, pendingDate, true
		}
		cmd.Tag, cmd.Date = ice.TagSetDate, args
	case "/get_date":
		cmd.Tag = ice.TagGetDate
	case "/enable":
		cmd.Tag = ice.TagEnableICE
	case "/disable":
		cmd.Tag = ice.TagDisableICE
	case "/status":
		cmd.Tag = ice.TagGetICE
	case "/test":
		cmd.Tag = ice.TagTestICE
	default:
		return cmd, "", false
	}
	return cmd, "", true
}

// completePending builds the command finishing a pending flow.
func completePending(user, state, text string) (ice.Command, bool) {
	cmd := ice.Command{User: user, Src: Source}
	switch state {
	case pendingMessage:
		cmd.Tag, cmd.Message = ice.TagSetMsg, text
	case pendingDate:
		cmd.Tag, cmd.Date = ice.TagSetDate, strings.TrimSpace(text)
	default:
		return cmd, false
	}
	return cmd, true
}
