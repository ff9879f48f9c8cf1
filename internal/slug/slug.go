// Package slug derives URL-safe identifiers from article titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
	markRemover = runes.Remove(runes.In(unicode.Mn))
)

// Make lowercases the title, drops every character outside [a-z0-9], spaces
// and hyphens, turns whitespace runs into single hyphens and trims hyphens
// from both ends. Accented Latin letters are folded to their base letter
// first, so "Café" becomes "cafe" rather than "caf".
//
// The result contains only [a-z0-9-], never starts or ends with a hyphen and
// never contains "--". Make(Make(s)) == Make(s). The result may be empty.
func Make(title string) string {
	s := strings.ToLower(fold(title))
	s = strings.Map(spaceToBlank, s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// spaceToBlank maps every Unicode space to a blank, which RE2 \s matches.
func spaceToBlank(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, markRemover, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
