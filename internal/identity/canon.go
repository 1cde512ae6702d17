// Package identity canonicalizes the free-text names that enter the system
// (roles, team codes, supervisor aliases, agent names) and resolves a new
// user's team and supervisor from them.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canon returns the comparison form of s: trimmed, diacritics removed,
// upper-cased and with inner whitespace collapsed. "Róbérto ", "ROBERTO" and
// "roberto" all canonicalize to "ROBERTO".
func Canon(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Chains and casers are stateful, build them per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	upper := cases.Upper(language.Spanish).String(stripped)
	return strings.Join(strings.Fields(upper), " ")
}

// Equal compares two names after canonicalization.
func Equal(a, b string) bool {
	return Canon(a) == Canon(b)
}
