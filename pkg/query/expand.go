package query

import (
	"strings"

	"github.com/japaniel/kanjigraph/pkg/kana"
)

// Expand proposes a kana reading for a romaji word. It returns [word] when the word does not
// convert cleanly, and [word, reading] when every token of the conversion is kana. Partial
// conversions ("row" → "ろw") are rejected so ordinary English words do not grow bogus
// alternatives.
func Expand(word string) []string {
	if word == "" {
		return nil
	}
	tokens := Tokenize(kana.ToKana(word))
	if len(tokens) == 0 {
		return []string{word}
	}
	var reading strings.Builder
	for _, t := range tokens {
		if t.Kind != Script {
			return []string{word}
		}
		reading.WriteString(t.Text)
	}
	return []string{word, reading.String()}
}
