package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenizeMixed(t *testing.T) {
	in := "this.is 123 some english! Also がいこくじん。「にほんじん」かのじょたち ! and スーパー with some  ファックス。 「エスカレーター」ワイシャツ $ lets not forget 必須条件 and --- a bit of じゃが芋"
	want := []Token{
		{Latin, "this"}, {Latin, "is"}, {Latin, "some"}, {Latin, "english"}, {Latin, "Also"},
		{Script, "がいこくじん"}, {Script, "にほんじん"}, {Script, "かのじょたち"},
		{Latin, "and"}, {Script, "スーパー"}, {Latin, "with"}, {Latin, "some"},
		{Script, "ファックス"}, {Script, "エスカレーター"}, {Script, "ワイシャツ"},
		{Latin, "lets"}, {Latin, "not"}, {Latin, "forget"}, {Script, "必須条件"},
		{Latin, "and"}, {Latin, "a"}, {Latin, "bit"}, {Latin, "of"}, {Script, "じゃが芋"},
	}
	assert.Equal(t, want, Tokenize(in))
}

func TestTokenizeElongationStaysInRun(t *testing.T) {
	cases := map[string][]string{
		"スーパー":          {"スーパー"},
		"ラーメン ケーキー":     {"ラーメン", "ケーキー"},
		"ｽｰﾊﾟｰ":         {"スーパー"},
		"ーあ":            {"あ"},
		"コーヒー!ティー":      {"コーヒー", "ティー"},
		"ビール〜abc":       {"ビール〜", "abc"},
		"ーーー":           nil,
		"すし ー ラーメン":     {"すし", "ラーメン"},
		"えーと、そうですねー。": {"えーと", "そうですねー"},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got := Tokenize(in)
			if want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, texts(got))
			for _, tok := range got {
				assert.NotEqual(t, Other, tok.Kind)
			}
		})
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	inputs := []string{
		"red jagaimo. something",
		" がいこくじん。 「にほんじん」かのじょたち !",
		"スーパー、エスカレーター ｶﾀｶﾅ",
		"ｊａｇａｉｍｏ 必須条件",
	}
	for _, in := range inputs {
		first := Tokenize(in)
		assert.Equal(t, first, Tokenize(Join(first)), in)
	}
}

func TestTokenizeFullWidthLatin(t *testing.T) {
	assert.Equal(t, []Token{{Latin, "jagaimo"}}, Tokenize("ｊａｇａｉｍｏ"))
}

func TestTokenizeNeverFails(t *testing.T) {
	for _, in := range []string{"", "   ", "123 456", "!!!", "\x00\xff"} {
		assert.Empty(t, Tokenize(in), "%q", in)
	}
}

func TestExpand(t *testing.T) {
	assert.Equal(t, []string{"jagaimo", "じゃがいも"}, Expand("jagaimo"))
	assert.Equal(t, []string{"JAGAIMO", "ジャガイモ"}, Expand("JAGAIMO"))
	assert.Equal(t, []string{"Jagaimo", "じゃがいも"}, Expand("Jagaimo"))
	assert.Equal(t, []string{"Kuruma", "くるま"}, Expand("Kuruma"))
	assert.Equal(t, []string{"row"}, Expand("row"))
	assert.Equal(t, []string{"Row"}, Expand("Row"))
	assert.Equal(t, []string{"red"}, Expand("red"))
	assert.Equal(t, []string{"hello"}, Expand("hello"))
	assert.Nil(t, Expand(""))
}

func TestBuildScenario(t *testing.T) {
	require.Equal(t, []string{"red", "jagaimo", "something"}, texts(Tokenize("red jagaimo. something")))

	expr := Build("red jagaimo. something")
	want := Expression{Op: And, Children: []Expression{
		Leaf("red"),
		{Op: Or, Children: []Expression{Leaf("jagaimo"), Leaf("じゃがいも")}},
		Leaf("something"),
	}}
	assert.Equal(t, want, expr)
	assert.Equal(t, "red AND (jagaimo OR じゃがいも) AND something", expr.String())
}

func TestBuildAst(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"Hello", "Hello"},
		{"this. is - definitely  test ~ ", "this AND is AND definitely AND test"},
		{" がいこくじん。 「にほんじん」かのじょたち !", "がいこくじん AND にほんじん AND かのじょたち"},
		{" ファックス。 「エスカレーター」ワイシャツ $", "ファックス AND エスカレーター AND ワイシャツ"},
		{"  条 ", "条"},
		{"  必須条件 じゃが芋", "必須条件 AND じゃが芋"},
		{"row", "row"},
		{"red JAGAIMO. something", "red AND (JAGAIMO OR ジャガイモ) AND something"},
		{"kuruma 車", "(kuruma OR くるま) AND 車"},
		{"Kuruma", "(Kuruma OR くるま)"},
		{"red Jagaimo. something", "red AND (Jagaimo OR じゃがいも) AND something"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Human(tc.in), tc.in)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "12 - 34 !"} {
		expr := Build(in)
		assert.True(t, expr.Empty(), in)
		assert.Equal(t, And, expr.Op)
		assert.Equal(t, "", expr.String())
	}
}

func TestBuildOrLeafRule(t *testing.T) {
	// For any Latin word, the builder emits OR(word, kana) exactly when the conversion is
	// fully kana.
	for _, w := range []string{"kuruma", "Sushi", "tree", "Mountain", "yama", "hi", "dog", "Tokyo"} {
		expr := Build(w)
		require.Len(t, expr.Children, 1)
		alts := Expand(w)
		node := expr.Children[0]
		if len(alts) == 2 {
			assert.Equal(t, Or, node.Op, w)
			assert.Equal(t, alts, node.Terms(), w)
			assert.False(t, strings.ContainsAny(alts[1], "abcdefghijklmnopqrstuvwxyz"), w)
		} else {
			assert.True(t, node.IsLeaf(), w)
			assert.Equal(t, w, node.Term)
		}
	}
}
