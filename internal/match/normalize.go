// Package match scores how likely two player display names refer to the same
// person and picks canonical candidates for unlinked records.
//
// Everything here is pure: no I/O, no shared state. Callers load the
// candidate pool from a store and hand it in.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases name and drops every rune that is not an ASCII letter
// or digit. Accented letters are folded to their base letter first, so
// "Zoë" and "Zoe" normalize the same.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokens splits name on whitespace, normalizes each piece and drops anything
// shorter than two characters.
func tokens(name string) []string {
	fields := strings.Fields(name)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := Normalize(f); len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

// SameTeam reports whether two team labels are both present and equal,
// ignoring case and surrounding space.
func SameTeam(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}
