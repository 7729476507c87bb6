package kana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestToKatakana(t *testing.T) {
	assert.Equal(t, "ジャガイモ", ToKatakana("じゃがいも"))
	assert.Equal(t, "スーパー", ToKatakana("すーぱー"))
	assert.Equal(t, "芋", ToKatakana("芋"))
}

func TestToKana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"jagaimo", "じゃがいも"},
		{"JAGAIMO", "ジャガイモ"},
		{"kuruma", "くるま"},
		{"shinbun", "しんぶん"},
		{"onna", "おんな"},
		{"konn", "こん"},
		{"kin'en", "きんえん"},
		{"kitte", "きって"},
		{"matcha", "まっちゃ"},
		{"tsukue", "つくえ"},
		{"kyou", "きょう"},
		{"ra-men", "らーめん"},
		{"row", "ろw"},
		{"red", "れd"},
		{"hello", "へlぉ"},
		{"Jagaimo", "じゃがいも"},
		{"Kuruma", "くるま"},
		{"Tokyo", "ときょ"},
		{"RAmen", "ラめん"},
		{"KIN'EN", "キンエン"},
		{"ROW", "ロW"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.out, ToKana(tt.in))
		})
	}
}

func TestScriptClasses(t *testing.T) {
	assert.True(t, IsHiragana('あ'))
	assert.False(t, IsHiragana('ア'))
	assert.True(t, IsKatakana('ア'))
	assert.False(t, IsKatakana('ー'))
	assert.False(t, IsKatakana('・'))
	assert.True(t, IsKanji('芋'))
	assert.True(t, IsKanji('々'))
	assert.True(t, IsElongation('ー'))
	assert.True(t, IsJapanese('じ'))
	assert.False(t, IsJapanese('a'))
}
