// Package name provides the author-name normalisation used by the
// classifiers: HTML unescaping, title casing, first/last name splitting and
// Latin folding.
//
// Author names in the AAN metadata are written "Last, First Middle", often
// with initials ("Smith, J. Robert") and HTML entities from the scraped
// sources.
package name

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// initialPattern matches initials such as "J." or "Th." inside a first name.
var initialPattern = regexp.MustCompile(`[\p{L}\p{N}_]+\.`)

// nonWordPattern matches everything that is not a letter, digit or underscore.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// Unescape decodes HTML entities ("Jos&eacute;" -> "José").
func Unescape(s string) string {
	return html.UnescapeString(s)
}

// Title upper-cases the first letter of every run of letters and lower-cases
// the rest, so "o'neil" becomes "O'Neil" and "JEAN-LUC" becomes "Jean-Luc".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// FirstName returns the first-name part of a "Last, First" name with all
// initials removed. Names without a comma have no first name.
func FirstName(s string) string {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return ""
	}
	first := strings.TrimSpace(parts[1])
	return strings.TrimSpace(initialPattern.ReplaceAllString(first, ""))
}

// FirstToken returns the first whitespace-separated token of the first name,
// with initials removed.
func FirstToken(s string) string {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) < 2 {
		return ""
	}
	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(initialPattern.ReplaceAllString(fields[0], ""))
}

// LastName returns the text before the first comma.
func LastName(s string) string {
	last, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(last)
}

// Len returns the number of characters in s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// folding maps Latin letters that do not decompose under NFKD.
var folding = map[rune]string{
	'ł': "l", 'Ł': "L",
	'œ': "oe", 'Œ': "Oe",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "Th",
}

// Fold replaces accented and extended Latin characters by their basic Latin
// base ("Wyłącz" -> "Wylacz", "naïveté" -> "naivete"). Characters from other
// scripts keep their base letters.
func Fold(s string) string {
	s = Unescape(s)
	s = strings.ReplaceAll(s, "?", "")

	var b strings.Builder
	for _, r := range s {
		if rep, ok := folding[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

// Normalize produces the comparison key used to join author lists coming
// from different files: each comma part is folded, stripped of non-word
// characters and lower-cased, and the result is title-cased.
//
//	Normalize("Dr&#237;az, Mar&iacute;a J.") == "Driaz,Mariaj"
func Normalize(s string) string {
	parts := strings.SplitN(s, ",", 3)
	for i, p := range parts {
		p = strings.ToLower(Fold(p))
		parts[i] = strings.TrimSpace(nonWordPattern.ReplaceAllString(p, ""))
	}
	return Title(strings.Join(parts, ","))
}

// IsInitials reports whether the first name of s (split on sep) is missing or
// consists only of initials.
func IsInitials(s, sep string) bool {
	parts := strings.Split(s, sep)
	if len(parts) < 2 {
		return true
	}
	first := strings.TrimSpace(parts[1])
	rest := strings.TrimSpace(initialPattern.ReplaceAllString(first, ""))
	return Len(rest) < 2
}
