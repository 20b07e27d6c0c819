// Package kana provides the small helpers the word-chain rules need for
// Japanese kana handling.
package kana

import "golang.org/x/text/width"

// smallToLarge maps the contracted-sound kana to their canonical large
// forms. A word ending in one of these chains on either the large form or
// the kana preceding it.
var smallToLarge = map[rune]rune{
	'ょ': 'よ',
	'ゃ': 'や',
	'ゅ': 'ゆ',
}

// IsSmall reports whether r is one of the small contracted-sound kana.
func IsSmall(r rune) bool {
	_, ok := smallToLarge[r]
	return ok
}

// ToLarge returns the canonical large form of a small kana. Other runes are
// returned unchanged.
func ToLarge(r rune) rune {
	if large, ok := smallToLarge[r]; ok {
		return large
	}
	return r
}

// ToHiragana folds katakana runes to their hiragana equivalents, leaving
// everything else untouched. Dictionary readings arrive in katakana for
// loanwords and need folding before comparison.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'ァ' && r <= 'ヶ' {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// NormalizeWidth folds half-width katakana (and other width variants) to
// their canonical forms so submitted words compare consistently.
func NormalizeWidth(s string) string {
	return width.Fold.String(s)
}
