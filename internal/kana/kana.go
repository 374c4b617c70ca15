// Package kana converts between the two Japanese phonetic scripts so that
// name search does not care which one the caller typed.
package kana

const (
	hiraganaFirst = rune(0x3041) // ぁ
	hiraganaLast  = rune(0x3096) // ゖ
	katakanaFirst = rune(0x30A1) // ァ
	katakanaLast  = rune(0x30F6) // ヶ

	// Hiragana and katakana blocks are laid out in parallel at a fixed offset.
	scriptOffset = katakanaFirst - hiraganaFirst
)

// ToKatakana maps every hiragana character to its katakana counterpart.
// Characters outside the hiragana block pass through unchanged.
func ToKatakana(text string) string {
	converted := make([]rune, 0, len(text))
	for _, character := range text {
		if character >= hiraganaFirst && character <= hiraganaLast {
			character += scriptOffset
		}
		converted = append(converted, character)
	}
	return string(converted)
}

// ToHiragana is the inverse of ToKatakana over the katakana block.
func ToHiragana(text string) string {
	converted := make([]rune, 0, len(text))
	for _, character := range text {
		if character >= katakanaFirst && character <= katakanaLast {
			character -= scriptOffset
		}
		converted = append(converted, character)
	}
	return string(converted)
}
