// Package query turns free-text search input into a boolean retrieval expression.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/japaniel/kanjigraph/pkg/kana"
)

// Kind classifies a token by script.
type Kind int

const (
	// Other covers digits, punctuation and symbols. Other tokens never leave Tokenize.
	Other Kind = iota
	// Latin is a run of Latin letters, possibly romaji.
	Latin
	// Script is a run of kana and/or kanji, kept verbatim.
	Script
)

func (k Kind) String() string {
	switch k {
	case Latin:
		return "latin"
	case Script:
		return "script"
	}
	return "other"
}

// Token is one classified run of the input.
type Token struct {
	Kind Kind
	Text string
}

func classify(r rune) Kind {
	if kana.IsJapanese(r) {
		return Script
	}
	if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
		return Latin
	}
	return Other
}

// Tokenize splits text into Latin and Script tokens. Whitespace, digits, punctuation and
// symbols separate tokens and are dropped. An elongation mark directly after a Script run
// belongs to that run, so スーパー stays one token. An apostrophe between two Latin letters
// stays inside the Latin token ("kin'en").
//
// Tokenize never fails; the worst case is an empty result.
func Tokenize(text string) []Token {
	runes := []rune(Normalize(text))
	var tokens []Token
	var cur strings.Builder
	curKind := Other

	flush := func() {
		if curKind != Other && cur.Len() > 0 {
			tokens = append(tokens, Token{Kind: curKind, Text: cur.String()})
		}
		cur.Reset()
		curKind = Other
	}

	for i, r := range runes {
		k := classify(r)
		switch {
		case kana.IsElongation(r) && curKind == Script:
			k = Script
		case r == '\'' && curKind == Latin && i+1 < len(runes) && classify(runes[i+1]) == Latin:
			k = Latin
		}
		if k != curKind {
			flush()
			curKind = k
		}
		if k != Other {
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// Normalize folds width variants (full-width romaji, half-width katakana) and composes
// voicing marks, so ｽｰﾊﾟｰ and スーパー tokenize alike.
func Normalize(text string) string {
	return norm.NFC.String(width.Fold.String(text))
}

// Join re-assembles tokens into text that tokenizes back to the same tokens.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
