package textutil

import (
	"strings"
	"unicode"
)

// Tokenize folds text and splits it on every rune that is not a letter or a
// digit, so "Acme, Ltd." yields ["acme", "ltd"].
func Tokenize(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// StopSet builds a lookup set from folded stopwords.
func StopSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = Fold(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// WordSet returns the distinct tokens of text that are not in stop.
func WordSet(text string, stop map[string]struct{}) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, skip := stop[token]; skip {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// OverlapRatio is |a ∩ b| / max(|a|, |b|). Two empty sets have ratio 0.
func OverlapRatio(a, b map[string]struct{}) float64 {
	denominator := max(len(a), len(b))
	if denominator == 0 {
		return 0
	}
	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denominator)
}
