package messages

import "regexp"

// The filter exists to keep settlement on the platform: users will try to
// move payment off-platform by swapping phone numbers, UPI handles, or app
// names in chat. Rules run in order, phone numbers first, because a UPI
// handle can contain digits that the phone rule would otherwise miss.
var (
	phoneRe   = regexp.MustCompile(`\d{10}`)
	upiRe     = regexp.MustCompile(`[\w.\-]+@\w+`)
	keywordRe = regexp.MustCompile(`(?i)\b(gpay|phonepe|paytm|upi)\b`)
)

// Placeholders substituted for blocked content.
const (
	PhoneBlocked   = "[PHONE BLOCKED]"
	UPIBlocked     = "[UPI BLOCKED]"
	KeywordBlocked = "[PAYMENT KEYWORD BLOCKED]"
)

// Sanitize replaces contact and payment details in chat text with
// placeholders. Pure function; the original text is never stored.
func Sanitize(text string) string {
	text = phoneRe.ReplaceAllString(text, PhoneBlocked)
	text = upiRe.ReplaceAllString(text, UPIBlocked)
	text = keywordRe.ReplaceAllString(text, KeywordBlocked)
	return text
}

// WasFiltered reports which rule, if any, would fire on the text.
// Used for metrics only.
func WasFiltered(text string) (string, bool) {
	switch {
	case phoneRe.MatchString(text):
		return "phone", true
	case upiRe.MatchString(text):
		return "upi", true
	case keywordRe.MatchString(text):
		return "keyword", true
	}
	return "", false
}
