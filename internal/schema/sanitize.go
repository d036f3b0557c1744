package schema

import "strings"

// MaxFreeTextLen caps every free-text field after sanitization.
const MaxFreeTextLen = 1000

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// Sanitize trims whitespace, strips angle-bracket characters, and caps the
// result at MaxFreeTextLen. This is a best-effort injection filter, not a
// security boundary. Sanitizing an already-sanitized string is a no-op.
func Sanitize(s string) string {
	s = angleBrackets.Replace(strings.TrimSpace(s))
	if len(s) > MaxFreeTextLen {
		s = s[:MaxFreeTextLen]
	}
	return s
}

// Scrub sanitizes every free-text field of the lead in place and lowercases
// the email address.
func (l *Lead) Scrub() {
	l.FirstName = Sanitize(l.FirstName)
	l.LastName = Sanitize(l.LastName)
	l.Email = strings.ToLower(Sanitize(l.Email))
	l.Phone = Sanitize(l.Phone)
	l.Frequency = Sanitize(l.Frequency)
	l.PreferredDate = Sanitize(l.PreferredDate)
	l.HowDidYouHear = Sanitize(l.HowDidYouHear)
	l.Message = Sanitize(l.Message)
}
