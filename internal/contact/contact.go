// Package contact pulls contact details out of free text.
package contact

import "regexp"

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// North American numbers: optional +1/1 country code, optional
	// parentheses around the area code, and "." "-" or space separators.
	// The number is group 1 and may not sit inside a longer digit run.
	phoneRe = regexp.MustCompile(`(?:^|[^\d])((?:\+?1[-. ]?)?(?:\(\d{3}\)|\d{3})[-. ]?\d{3}[-. ]?\d{4})\b`)
)

// Contact holds the first email and phone number found in a text.
type Contact struct {
	Email *string
	Phone *string
}

// Extract returns the first email address and the first phone number in
// text. Either field is nil when nothing matches.
func Extract(text string) Contact {
	return Contact{
		Email: ExtractEmail(text),
		Phone: ExtractPhone(text),
	}
}

// ExtractEmail returns the first email-shaped substring of text, or nil.
func ExtractEmail(text string) *string {
	return firstMatch(emailRe, text)
}

// ExtractPhone returns the first North American phone number in text, or nil.
func ExtractPhone(text string) *string {
	m := phoneRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &m[1]
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}
