package password

import "github.com/mkokor/jwt-based-access-management/internal/common"

// Password-strength rules: at least 8 characters, at least one digit, at
// least one special character, and nothing outside letters, digits and the
// special set.
const (
	minLength    = 8
	specialChars = "!@#$%^&*"
)

// Validate checks the plaintext against the strength rules. It returns
// common.ErrPasswordTooWeak on any violation and is free of side effects.
func Validate(plaintext string) error {
	if len(plaintext) < minLength {
		return common.ErrPasswordTooWeak
	}

	var hasDigit, hasSpecial bool
	for _, c := range plaintext {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case isSpecial(c):
			hasSpecial = true
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		default:
			// Anything else, unicode included, is out of the allowed set.
			return common.ErrPasswordTooWeak
		}
	}

	if !hasDigit || !hasSpecial {
		return common.ErrPasswordTooWeak
	}
	return nil
}

func isSpecial(c rune) bool {
	for _, s := range specialChars {
		if c == s {
			return true
		}
	}
	return false
}
