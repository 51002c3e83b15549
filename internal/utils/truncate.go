package utils

import "unicode/utf8"

// TruncationMarker terminates truncated text. It is short enough to fit
// small budgets.
const TruncationMarker = "\n[...]"

// TruncateToBudget cuts text so its rune count never exceeds the budget,
// replacing the excess with TruncationMarker. A budget of zero or less
// disables truncation. The operation is idempotent: truncating an already
// truncated string to the same or a larger budget is a no-op. When the
// budget is smaller than the marker, the marker itself is clipped so the
// result still fits.
func TruncateToBudget(text string, budgetCharacters int) string {
	if budgetCharacters <= 0 {
		return text
	}
	if utf8.RuneCountInString(text) <= budgetCharacters {
		return text
	}
	markerRunes := []rune(TruncationMarker)
	if budgetCharacters <= len(markerRunes) {
		return string(markerRunes[:budgetCharacters])
	}
	textRunes := []rune(text)
	keepCount := budgetCharacters - len(markerRunes)
	return string(textRunes[:keepCount]) + TruncationMarker
}
