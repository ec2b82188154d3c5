package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/example/langflix/pkg/models"
)

// Result is the outcome of grading one answer
type Result struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"` // Canonical translation shown as feedback
	Key      string `json:"key"`      // Progress key of the graded word
}

// Normalize folds a string for comparison: surrounding whitespace is
// trimmed, letters are lowercased and combining diacritics are removed,
// so "CAFÉ " and "cafe" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// IsCorrect reports whether answer matches any of the acceptable translations
func IsCorrect(answer string, acceptable []string) bool {
	normalized := Normalize(answer)
	for _, candidate := range acceptable {
		if Normalize(candidate) == normalized {
			return true
		}
	}
	return false
}

// Grade checks an answer against a word's translations
func Grade(answer string, word models.Word) Result {
	return Result{
		Correct:  IsCorrect(answer, word.Spanish),
		Expected: word.Key(),
		Key:      word.Key(),
	}
}
