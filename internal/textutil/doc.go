// Package textutil provides the text primitives company-name comparison is
// built from: Unicode case folding, word tokenization, stopword filtering and
// word-overlap ratios.
//
// Text is NFKC-normalized and case-folded with golang.org/x/text before
// tokenizing. Tokens split on any rune that is not a letter or digit, so
// punctuation never blocks a word match.
package textutil
