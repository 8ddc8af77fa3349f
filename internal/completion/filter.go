package completion

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

type matchPhase func(s, query string, fold func(string) string) bool

// phases run in rank order; each consumes the candidates it matches.
var phases = []matchPhase{
	func(s, q string, _ func(string) string) bool { return strings.HasPrefix(s, q) },
	func(s, q string, fold func(string) string) bool { return strings.HasPrefix(fold(s), fold(q)) },
	func(s, q string, _ func(string) string) bool { return strings.Contains(s, q) },
	func(s, q string, fold func(string) string) bool { return strings.Contains(fold(s), fold(q)) },
	func(s, q string, fold func(string) string) bool { return strings.Contains(fold(Initials(s)), fold(q)) },
}

// Filter ranks candidates against the typed query. The phases run against
// each candidate's text; only when nothing matches at all do they run again
// against descriptions. Placeholders are always kept, ahead of the rest.
func Filter(cands []Completion, query string) []Completion {
	if query == "" {
		return cands
	}
	caser := cases.Fold()
	fold := func(s string) string { return caser.String(s) }

	var kept, pool []Completion
	for _, c := range cands {
		if c.Kind == CompletionPlaceholder {
			kept = append(kept, c)
		} else {
			pool = append(pool, c)
		}
	}

	matched := rank(pool, query, fold, func(c Completion) string { return c.Text })
	if len(matched) == 0 {
		matched = rank(pool, query, fold, func(c Completion) string { return c.Description })
	}
	return append(kept, matched...)
}

func rank(pool []Completion, query string, fold func(string) string, field func(Completion) string) []Completion {
	remaining := pool
	var out []Completion
	for _, phase := range phases {
		if len(remaining) == 0 {
			break
		}
		var rest []Completion
		for _, c := range remaining {
			if s := field(c); s != "" && phase(s, query, fold) {
				out = append(out, c)
			} else {
				rest = append(rest, c)
			}
		}
		remaining = rest
	}
	return out
}

type runeClass uint8

const (
	runeOther runeClass = iota
	runeUpper
	runeLower
	runeDigit
	runeLetter
)

func classOfRune(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return runeUpper
	case unicode.IsLower(r):
		return runeLower
	case unicode.IsDigit(r):
		return runeDigit
	case unicode.IsLetter(r):
		return runeLetter
	}
	return runeOther
}

// Initials returns the camel-case initials of s: the first rune, every
// uppercase rune, and every rune whose class differs from a preceding
// non-uppercase rune.
func Initials(s string) string {
	var sb strings.Builder
	prev := runeOther
	first := true
	for _, r := range s {
		class := classOfRune(r)
		if first || class == runeUpper || (class != prev && prev != runeUpper) {
			sb.WriteRune(r)
		}
		prev = class
		first = false
	}
	return sb.String()
}
