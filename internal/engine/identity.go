package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName strips diacritics, upper-cases and trims a name for comparison.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// MatchesSamePerson decides whether two names refer to the same patient.
// Identity is the first name token after normalization, so two people sharing a
// first name collide. All identity decisions go through here.
func MatchesSamePerson(a, b string) bool {
	ta, tb := firstToken(a), firstToken(b)
	return ta != "" && ta == tb
}

func firstToken(name string) string {
	fields := strings.Fields(NormalizeName(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
