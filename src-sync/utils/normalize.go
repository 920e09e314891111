package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	stripped, _, err := transform.String(diacritics, s)
	if err != nil {
		return s
	}
	return stripped
}

// NormalizeName folds a title, venue name or slug into its comparison form:
// lowercase, no diacritics, "&" spelled out, non-alphanumeric runs collapsed
// into single spaces. Both sides of every fuzzy match go through this.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ToLower(stripDiacritics(s))
	return collapseRuns(s, ' ')
}

// Slugify turns free text into a URL-safe identifier
func Slugify(s string) string {
	s = strings.ToLower(stripDiacritics(strings.TrimSpace(s)))
	return strings.ReplaceAll(collapseRuns(s, ' '), " ", "-")
}

func collapseRuns(s string, sep rune) string {
	var sb strings.Builder
	pending := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteRune(sep)
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}
