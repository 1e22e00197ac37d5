// Package lookup implements the fast point-lookup path: the in-memory
// snapshot, fuzzy search, the operation procedures, and the dispatcher.
package lookup

import "strings"

var diacriticFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

// Normalize lowercases text, folds Spanish diacritics, and trims whitespace.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(diacriticFolder.Replace(text)))
}

// PhoneDigits strips every character except digits and '+'.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchesAll reports whether every token is a substring of key.
func matchesAll(key string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(key, t) {
			return false
		}
	}
	return true
}

// matchesAny reports whether at least one token is a substring of key.
func matchesAny(key string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(key, t) {
			return true
		}
	}
	return false
}

// countMatches returns how many tokens are substrings of key.
func countMatches(key string, tokens []string) int {
	n := 0
	for _, t := range tokens {
		if strings.Contains(key, t) {
			n++
		}
	}
	return n
}
