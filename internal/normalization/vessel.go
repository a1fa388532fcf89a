package normalization

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a vessel name for matching: trimmed, uppercased,
// punctuation stripped, internal whitespace collapsed. Registry exports and
// AIS self-reports disagree on all three.
func NormalizeName(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	lastSpace := true
	for _, r := range strings.ToUpper(strings.TrimSpace(input)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Other punctuation is dropped outright.
	}
	return strings.TrimSpace(b.String())
}

// NormalizeIMO keeps digits only. A valid IMO number is 7 digits but
// registries pad, prefix ("IMO 1234567") and float-format them.
func NormalizeIMO(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '.' {
			// "1234567.0" from spreadsheet exports: stop at the decimal point.
			break
		}
	}
	s := b.String()
	if len(s) != 7 {
		// Keep whatever digits we have; matching treats short values as weak.
		return s
	}
	return s
}

// NormalizeFlag uppercases an ISO-3166 alpha-3 flag code.
func NormalizeFlag(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// NormalizeCallSign uppercases and strips spaces.
func NormalizeCallSign(input string) string {
	return strings.ToUpper(strings.Join(strings.Fields(input), ""))
}
