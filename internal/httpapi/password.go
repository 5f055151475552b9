package httpapi

import (
	"strings"
	"unicode"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// passwordComplexityError returns an empty string when the candidate passes
// the reset-flow rules, otherwise the message naming the first violation.
func passwordComplexityError(pw string) string {
	if len(pw) < 6 {
		return "Password minimal 6 karakter."
	}
	first := []rune(pw)[0]
	if !unicode.IsUpper(first) {
		return "Password harus diawali huruf besar."
	}
	hasDigit := false
	hasSpecial := false
	for _, r := range pw {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}
	if !hasDigit {
		return "Password harus mengandung angka."
	}
	if !hasSpecial {
		return "Password harus mengandung minimal satu karakter spesial."
	}
	return ""
}
