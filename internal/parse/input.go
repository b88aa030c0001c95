package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// InviteCodeLength is the number of characters in a restaurant invite code.
const InviteCodeLength = 6

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	inviteCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
)

// InviteCode normalizes a code typed by a user: surrounding whitespace, inner
// spaces and dashes are dropped and letters upper-cased. ok is false when the
// result is not six characters of A-Z0-9.
func InviteCode(raw string) (code string, ok bool) {
	code = strings.ToUpper(strings.TrimSpace(raw))
	code = strings.NewReplacer(" ", "", "-", "").Replace(code)
	return code, inviteCodeRe.MatchString(code)
}

// Email trims and lower-cases an address. ok reports whether it looks like
// local@domain.tld.
func Email(raw string) (email string, ok bool) {
	email = strings.ToLower(strings.TrimSpace(raw))
	return email, emailRe.MatchString(email)
}

// Name collapses runs of whitespace (including non-breaking spaces) and trims the result.
func Name(raw string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ReplaceAll(raw, "\u00a0", " "), " "))
}

// NameLength counts characters, not bytes, so "Işıl" is four long.
func NameLength(name string) int {
	return utf8.RuneCountInString(name)
}

// PasswordIssue names the first password rule a candidate breaks.
type PasswordIssue int

const (
	PasswordOK PasswordIssue = iota
	PasswordTooShort
	PasswordNoUpper
	PasswordNoLower
	PasswordNoDigit
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Password checks the rules in order: length, an ASCII upper-case letter, a
// lower-case letter, a digit.
func Password(pw string) PasswordIssue {
	switch {
	case len(pw) < MinPasswordLength:
		return PasswordTooShort
	case !upperRe.MatchString(pw):
		return PasswordNoUpper
	case !lowerRe.MatchString(pw):
		return PasswordNoLower
	case !digitRe.MatchString(pw):
		return PasswordNoDigit
	}
	return PasswordOK
}
