// Package kana classifies Japanese script characters and converts between hiragana,
// katakana and romaji.
package kana

import "unicode"

// IsHiragana reports whether r is a hiragana letter or iteration mark.
func IsHiragana(r rune) bool {
	return r >= 0x3041 && r <= 0x309F
}

// IsKatakana reports whether r is a katakana letter or iteration mark. The prolonged sound
// mark and the middle dot are not letters and are excluded.
func IsKatakana(r rune) bool {
	if r == 0x30FB || r == 0x30FC {
		return false
	}
	return (r >= 0x30A1 && r <= 0x30FF) || (r >= 0x31F0 && r <= 0x31FF) || (r >= 0xFF66 && r <= 0xFF9D && r != 0xFF70)
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

// IsKanji reports whether r is an ideograph, including the 々 repetition mark.
func IsKanji(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// IsJapanese reports whether r belongs to the native script: kana or kanji.
func IsJapanese(r rune) bool {
	return IsKana(r) || IsKanji(r)
}

// IsElongation reports whether r lengthens the preceding vowel (ー, ｰ, 〜, ～).
func IsElongation(r rune) bool {
	return r == 0x30FC || r == 0xFF70 || r == 0x301C || r == 0xFF5E
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// ToKatakana converts Hiragana to Katakana.
func ToKatakana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x3041 && r <= 0x3096 {
			runes[i] = r + 0x60
		}
	}
	return string(runes)
}
