// Package rules holds the input rules shared by the HTTP handlers and the
// booking form, so that the client and the server agree on what is valid.
package rules

import (
	"html"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// 01 prefix, operator code 0/1/2/5, eight subscriber digits.
	phonePattern = regexp.MustCompile(`^01[0125][0-9]{8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	// EgyptianPhone validates a mobile number after whitespace is removed.
	EgyptianPhone = validation.NewStringRuleWithError(IsEgyptianPhone,
		validation.NewError("validation_egyptian_phone", "must be an Egyptian mobile number (01XXXXXXXXX)"))

	// EmailShape is the loose local@domain.tld check used by the booking form.
	EmailShape = validation.NewStringRuleWithError(IsEmailShape,
		validation.NewError("validation_email_shape", "must be a valid email address"))
)

// NormalizePhone drops every whitespace character.
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func IsEgyptianPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

func IsEmailShape(email string) bool {
	return emailPattern.MatchString(email)
}

// Sanitize trims free text, removes escaping backslashes and HTML-escapes the
// result. Applied to user-supplied strings before they are stored or echoed.
func Sanitize(s string) string {
	return html.EscapeString(stripSlashes(strings.TrimSpace(s)))
}

func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
