package searchindex

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/kanjigraph/pkg/kana"
	"github.com/japaniel/kanjigraph/pkg/query"
)

// Analyzer turns field text into index terms. Terms are lower-cased and katakana is folded
// to hiragana, so ジャガイモ and じゃがいも meet in the index. With a morphological tokenizer
// attached, Japanese compounds are also indexed by their morphemes (必須条件 → 必須, 条件).
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates an analyzer backed by kagome with the IPA dictionary.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Terms returns the index terms for one field value. Duplicates are kept; they count
// towards term frequency.
func (a *Analyzer) Terms(text string) []string {
	var out []string
	for _, tok := range query.Tokenize(text) {
		term := normalizeTerm(tok.Text)
		if term == "" {
			continue
		}
		out = append(out, term)
		if tok.Kind == query.Script && a != nil && a.t != nil && hasKanji(tok.Text) {
			out = append(out, a.segments(tok.Text, term)...)
		}
	}
	return out
}

func (a *Analyzer) segments(text, whole string) []string {
	var out []string
	for _, token := range a.t.Analyze(text, tokenizer.Search) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		seg := normalizeTerm(token.Surface)
		if seg == "" || seg == whole {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// queryTerms analyzes a query leaf. Query text is never segmented so prefix matching sees
// exactly what the user typed.
func queryTerms(leaf string) []string {
	var out []string
	for _, tok := range query.Tokenize(leaf) {
		if term := normalizeTerm(tok.Text); term != "" {
			out = append(out, term)
		}
	}
	return out
}

func normalizeTerm(s string) string {
	return kana.ToHiragana(strings.ToLower(strings.TrimSpace(s)))
}

func hasKanji(s string) bool {
	for _, r := range s {
		if kana.IsKanji(r) {
			return true
		}
	}
	return false
}
