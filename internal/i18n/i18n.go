// Package i18n resolves feedback message keys into localized text.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. Keys ending in "Show"/"Info" take positional tokens.
const (
	DateInPast   = "DATE_INPAST"
	DateInvalid  = "DATE_INVALID"
	DateNotSet   = "DATE_NOTSET"
	DateShow     = "DATE_SHOW" // token: date
	DateUpdated  = "DATE_UPDATED"
	ICEDisabled  = "ICE_DISABLED"
	ICEEnabled   = "ICE_ENABLED"
	ICESent      = "ICE_SENT"
	InfoRecord   = "INFO_RECORD" // tokens: mails, date, status
	MailsUpdated = "MAILS_UPDATED"
	MsgShow      = "MSG_SHOW" // token: message
	MsgUpdated   = "MSG_UPDATED"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		DateInPast:   "The date must be in the future.",
		DateInvalid:  "The date is not valid, use the YYYY-MM-DD format.",
		DateNotSet:   "not set",
		DateShow:     "ICE delivery date: %s",
		DateUpdated:  "ICE delivery date updated.",
		ICEDisabled:  "ICE disabled",
		ICEEnabled:   "ICE enabled",
		ICESent:      "Your ICE message has been delivered.",
		InfoRecord:   "Recipients: %s\nDate: %s\nStatus: %s",
		MailsUpdated: "ICE recipients updated.",
		MsgShow:      "ICE message:\n%s",
		MsgUpdated:   "ICE message updated.",
	},
	language.Spanish: {
		DateInPast:   "La fecha debe estar en el futuro.",
		DateInvalid:  "La fecha no es válida, usa el formato AAAA-MM-DD.",
		DateNotSet:   "sin fijar",
		DateShow:     "Fecha de envío del ICE: %s",
		DateUpdated:  "Fecha de envío del ICE actualizada.",
		ICEDisabled:  "ICE desactivado",
		ICEEnabled:   "ICE activado",
		ICESent:      "Tu mensaje ICE ha sido enviado.",
		InfoRecord:   "Destinatarios: %s\nFecha: %s\nEstado: %s",
		MailsUpdated: "Destinatarios del ICE actualizados.",
		MsgShow:      "Mensaje ICE:\n%s",
		MsgUpdated:   "Mensaje ICE actualizado.",
	},
}

// Translator renders message keys for a locale.
type Translator struct {
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	def       language.Tag
}

// New builds a Translator. defaultLocale is used when a user has none or an unsupported one;
// English is the last resort.
func New(defaultLocale string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	// English first: the matcher falls back to the first supported tag.
	supported := []language.Tag{language.English, language.Spanish}
	for _, tag := range supported {
		for key, msg := range translations[tag] {
			// SetString only fails on malformed messages; the table above is static.
			_ = b.SetString(tag, key, msg)
		}
	}
	tr := &Translator{
		cat:       b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		def:       language.English,
	}
	if tag, ok := tr.match(defaultLocale); ok {
		tr.def = tag
	}
	return tr
}

// Sprintf renders key with positional tokens in locale, falling back to the default locale.
func (t *Translator) Sprintf(locale, key string, args ...any) string {
	tag, ok := t.match(locale)
	if !ok {
		tag = t.def
	}
	return message.NewPrinter(tag, message.Catalog(t.cat)).Sprintf(key, args...)
}

func (t *Translator) match(locale string) (language.Tag, bool) {
	if locale == "" {
		return language.Und, false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := t.matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return t.supported[idx], true
}
