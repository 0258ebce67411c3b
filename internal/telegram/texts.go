package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// UI texts in English. Feedback itself is localized by the relay dispatcher.
const (
	helpText = "🧊 ICE: a message delivered to your contacts on a date unless you stop it.\n\n" +
		"/add_mails a@x.com b@x.com — add recipients\n" +
		"/rm_mails a@x.com — remove recipients\n" +
		"/set_msg — set the message\n" +
		"/get_msg — show the message\n" +
		"/set_date YYYY-MM-DD — set the delivery date\n" +
		"/get_date — show the delivery date\n" +
		"/enable, /disable — arm or disarm delivery\n" +
		"/status — show everything\n" +
		"/test — mail the message to yourself"
	askMessageText = "Send your ICE message in a single message (max 4096 chars):"
	askDateText    = "Enter the delivery date as YYYY-MM-DD:"
	tooLongText    = "Too long. Please keep it under 4096 characters."
	failureText    = "Something went wrong, please try again later."
	maxMessageLen  = 4096
)

// mainMenuKeyboard builds the reply keyboard shown with help.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/get_msg"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/enable"),
			tgbotapi.NewKeyboardButton("/disable"),
		),
	)
}
