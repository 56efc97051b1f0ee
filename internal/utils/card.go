package utils

import "regexp"

var (
	cardNumberRe = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)
	pinRe        = regexp.MustCompile(`^\d{4}$`)
)

// ValidCardNumber reports whether s is in the XXXX-XXXX-XXXX-XXXX form.
func ValidCardNumber(s string) bool {
	return cardNumberRe.MatchString(s)
}

// ValidPIN reports whether s is exactly 4 digits.
func ValidPIN(s string) bool {
	return pinRe.MatchString(s)
}

// MaskCardNumber keeps only the last group of a card number for log output.
func MaskCardNumber(s string) string {
	if len(s) < 4 {
		return "****"
	}
	return "****-****-****-" + s[len(s)-4:]
}
