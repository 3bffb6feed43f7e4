package privacy

import (
	"strings"
	"unicode"
)

const visibleDigits = 4

// MaskPhoneNumber replaces every digit except the last four with '*'.
// Separators such as '+', spaces and dashes are kept so the shape of the
// number survives in logs. Numbers with four digits or fewer are fully
// masked.
func MaskPhoneNumber(phone string) string {
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	keep := 0
	if digits > visibleDigits {
		keep = visibleDigits
	}

	var b strings.Builder
	b.Grow(len(phone))

	seen := 0
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen > digits-keep {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
	}

	return b.String()
}
