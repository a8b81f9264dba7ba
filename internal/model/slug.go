package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugMaxLen = 60

// Slug derives the stable external identifier for a run's outputs from the
// input location: lowercased, diacritics and non-alphanumerics stripped,
// spaces collapsed to underscores, truncated to 60 characters.
func Slug(location string) string {
	// Strip diacritics so "Montréal" and "Montreal" share a slug.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, location)
	if err != nil {
		folded = location
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			sb.WriteRune(r)
		}
	}

	slug := strings.Join(strings.Fields(sb.String()), "_")
	if len(slug) > slugMaxLen {
		slug = slug[:slugMaxLen]
	}
	return slug
}
