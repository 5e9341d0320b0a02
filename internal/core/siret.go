package core

import (
	"strings"
	"unicode"
)

// NormalizeSIRET drops the separators used to group SIRET digits (spaces,
// dots, dashes). Letters are kept so that ValidSIRET still rejects them.
func NormalizeSIRET(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// ValidSIRET checks the 14-digit length and the Luhn checksum.
func ValidSIRET(s string) bool {
	if len(s) != 14 {
		return false
	}
	sum := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
