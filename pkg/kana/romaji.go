package kana

import (
	"strings"
	"unicode/utf8"
)

// romajiTable maps lower-case romaji syllables to hiragana. Both Hepburn and Kunrei
// spellings are accepted.
var romajiTable = map[string]string{
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",

	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"sa": "さ", "si": "し", "shi": "し", "su": "す", "se": "せ", "so": "そ",
	"za": "ざ", "zi": "じ", "ji": "じ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"ta": "た", "ti": "ち", "chi": "ち", "tu": "つ", "tsu": "つ", "te": "て", "to": "と",
	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"ha": "は", "hi": "ひ", "hu": "ふ", "fu": "ふ", "he": "へ", "ho": "ほ",
	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"ya": "や", "yu": "ゆ", "yo": "よ", "ye": "いぇ",
	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"wa": "わ", "wi": "うぃ", "we": "うぇ", "wo": "を",
	"va": "ゔぁ", "vi": "ゔぃ", "vu": "ゔ", "ve": "ゔぇ", "vo": "ゔぉ",

	"kya": "きゃ", "kyu": "きゅ", "kyo": "きょ", "kye": "きぇ",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",
	"sha": "しゃ", "shu": "しゅ", "sho": "しょ", "she": "しぇ",
	"zya": "じゃ", "zyu": "じゅ", "zyo": "じょ",
	"ja": "じゃ", "ju": "じゅ", "jo": "じょ", "je": "じぇ",
	"jya": "じゃ", "jyu": "じゅ", "jyo": "じょ",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"cha": "ちゃ", "chu": "ちゅ", "cho": "ちょ", "che": "ちぇ",
	"dya": "ぢゃ", "dyu": "ぢゅ", "dyo": "ぢょ",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",
	"fa": "ふぁ", "fi": "ふぃ", "fe": "ふぇ", "fo": "ふぉ", "fyu": "ふゅ",
	"tsa": "つぁ", "tsi": "つぃ", "tse": "つぇ", "tso": "つぉ",
	"tha": "てゃ", "thi": "てぃ", "thu": "てゅ", "the": "てぇ", "tho": "てょ",
	"dha": "でゃ", "dhi": "でぃ", "dhu": "でゅ", "dhe": "でぇ", "dho": "でょ",

	"xa": "ぁ", "xi": "ぃ", "xu": "ぅ", "xe": "ぇ", "xo": "ぉ",
	"xya": "ゃ", "xyu": "ゅ", "xyo": "ょ", "xtu": "っ", "xtsu": "っ",
	"la": "ぁ", "li": "ぃ", "lu": "ぅ", "le": "ぇ", "lo": "ぉ",
	"lya": "ゃ", "lyu": "ゅ", "lyo": "ょ", "ltu": "っ", "ltsu": "っ",
	"xwa": "ゎ", "lwa": "ゎ", "xka": "ゕ", "xke": "ゖ",

	"-": "ー",
}

const maxRomajiKey = 4

func isVowel(b byte) bool {
	return b == 'a' || b == 'i' || b == 'u' || b == 'e' || b == 'o'
}

func isConsonant(b byte) bool {
	return b >= 'a' && b <= 'z' && !isVowel(b)
}

// ToKana converts romaji to kana. A syllable whose letters are all upper case becomes
// katakana, any other syllable hiragana, so "jagaimo" and "Jagaimo" give じゃがいも and
// "JAGAIMO" gives ジャガイモ. Anything that is not part of a syllable is copied through
// unchanged, so callers can detect a partial conversion by looking for leftover Latin letters.
func ToKana(s string) string {
	lower := make([]byte, 0, len(s))
	var upper []bool
	for _, r := range s {
		if r < utf8.RuneSelf {
			b := byte(r)
			up := b >= 'A' && b <= 'Z'
			if up {
				b += 'a' - 'A'
			}
			lower = append(lower, b)
			upper = append(upper, up)
			continue
		}
		n := len(lower)
		lower = utf8.AppendRune(lower, r)
		for ; n < len(lower); n++ {
			upper = append(upper, false)
		}
	}
	return convert(string(lower), upper)
}

// convert walks lower-case romaji. upper marks, per byte, the letters that were upper case
// in the input.
func convert(s string, upper []bool) string {
	var out strings.Builder
	emit := func(kana string, from, to int) {
		if allUpper(s, upper, from, to) {
			kana = ToKatakana(kana)
		}
		out.WriteString(kana)
	}
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			// Copy multi-byte runes verbatim.
			_, size := utf8.DecodeRuneInString(s[i:])
			out.WriteString(s[i : i+size])
			i += size
			continue
		}
		var next byte
		if i+1 < len(s) {
			next = s[i+1]
		}

		if c == 'n' {
			switch {
			case next == '\'':
				emit("ん", i, i+2)
				i += 2
				continue
			case next == 'n':
				// "nn" before a vowel is ん + n-row syllable ("onna"), otherwise a single ん.
				if i+2 < len(s) && (isVowel(s[i+2]) || s[i+2] == 'y') {
					emit("ん", i, i+1)
					i++
				} else {
					emit("ん", i, i+2)
					i += 2
				}
				continue
			case !isVowel(next) && next != 'y':
				emit("ん", i, i+1)
				i++
				continue
			}
		}

		// Doubled consonant ("kitte", "matcha") is a small tsu.
		if isConsonant(c) && c != 'n' && c != 'l' && c != 'x' && (next == c || (c == 't' && next == 'c')) {
			emit("っ", i, i+1)
			i++
			continue
		}

		matched := false
		for l := maxRomajiKey; l > 0; l-- {
			if i+l > len(s) {
				continue
			}
			if k, ok := romajiTable[s[i:i+l]]; ok {
				emit(k, i, i+l)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			if upper[i] {
				c -= 'a' - 'A'
			}
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// allUpper reports whether s[from:to] holds at least one letter and every letter in it was
// upper case.
func allUpper(s string, upper []bool, from, to int) bool {
	letters := 0
	for i := from; i < to; i++ {
		if s[i] < 'a' || s[i] > 'z' {
			continue
		}
		if !upper[i] {
			return false
		}
		letters++
	}
	return letters > 0
}
