// Package whatsapp builds wa.me click-to-chat deep links.
package whatsapp

import (
	"net/url"
	"strings"
)

// Link returns a wa.me deep link that opens a chat with phone and the
// given message prefilled. Non-digit characters are stripped from the
// phone so formatted numbers like "+58 412-555-0101" work as-is.
func Link(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + digits,
		RawQuery: url.Values{"text": {text}}.Encode(),
	}
	return u.String()
}
