// Package caption reduces raw provider answers to a single canonical label.
package caption

import (
	"strings"

	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
)

// Normalize returns the first word of the answer, lowercased and without
// surrounding punctuation. Anything that yields no word becomes "unknown".
func Normalize(res types.RecognitionResult) types.CanonicalLabel {
	return NormalizeText(rawText(res))
}

// NormalizeText applies the same reduction to a bare string.
func NormalizeText(text string) types.CanonicalLabel {
	text = utils.StripThinkTags(text)
	text = utils.StripCodeFences(text)

	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return types.LabelUnknown
	}
	token := utils.TrimPunctuation(fields[0])
	if token == "" {
		return types.LabelUnknown
	}
	return types.CanonicalLabel(token)
}

func rawText(res types.RecognitionResult) string {
	switch res.Shape {
	case types.ShapeParts:
		texts := make([]string, 0, len(res.Parts))
		for _, part := range res.Parts {
			if part.Type == types.PartTypeText {
				texts = append(texts, part.Text)
			}
		}
		return strings.Join(texts, " ")
	default:
		return res.Text
	}
}
