package shiritori

import (
	"fmt"
	"unicode/utf8"

	"github.com/stakahashi/shiritori.space/internal/kana"
)

// terminalKana ends the game for whoever plays a word closing on it.
const terminalKana = 'ん'

// checkChain verifies that word starts with the successor character of
// lastWord. When lastWord ends in a small contracted kana the word may start
// with either the large form or the kana preceding it. An empty lastWord
// (the opening turn) accepts any word. On failure the returned feedback
// names the accepted starting characters.
func checkChain(lastWord, word string) (string, bool) {
	if lastWord == "" {
		return "", true
	}
	runes := []rune(lastWord)
	tail := runes[len(runes)-1]
	first, _ := utf8.DecodeRuneInString(word)

	if kana.IsSmall(tail) {
		large := kana.ToLarge(tail)
		if len(runes) < 2 {
			// No preceding kana to chain on, only the large form counts.
			if first != large {
				return fmt.Sprintf("Word does not start with %c", large), false
			}
			return "", true
		}
		prev := runes[len(runes)-2]
		if first != large && first != prev {
			return fmt.Sprintf("Word does not start with %c or %c", large, prev), false
		}
		return "", true
	}
	if first != tail {
		return fmt.Sprintf("Word does not start with %c", tail), false
	}
	return "", true
}

// endsTerminal reports whether word closes on the terminal kana.
func endsTerminal(word string) bool {
	runes := []rune(word)
	return len(runes) > 0 && runes[len(runes)-1] == terminalKana
}
