// Package textnorm folds free-form Portuguese text into comparable keys.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics decomposes value (NFD) and drops combining marks, so "São Paulo"
// becomes "Sao Paulo".
func StripDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return result
}

// Lower returns the lowercase, diacritic-free, trimmed form of value.
func Lower(value string) string {
	return strings.ToLower(StripDiacritics(strings.TrimSpace(value)))
}

// Upper returns the uppercase, diacritic-free, trimmed form of value.
func Upper(value string) string {
	return strings.ToUpper(StripDiacritics(strings.TrimSpace(value)))
}

// Digits keeps only ASCII digits.
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
