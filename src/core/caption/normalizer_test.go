package caption

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ewaste-server-go/src/core/types"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want types.CanonicalLabel
	}{
		{"plain", "phone", "phone"},
		{"sentence", "Mobile phone on a table", "mobile"},
		{"punctuation", "Phone.", "phone"},
		{"quoted", `"Laptop!"`, "laptop"},
		{"leading space", "   Keyboard\n", "keyboard"},
		{"think block", "<think>maybe a mouse?</think>\nCharger", "charger"},
		{"code fence", "```text\nBattery\n```", "battery"},
		{"empty", "", types.LabelUnknown},
		{"whitespace", " \t\n ", types.LabelUnknown},
		{"only punctuation", "...", types.LabelUnknown},
		{"unterminated think", "<think>still reasoning", types.LabelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeShapes(t *testing.T) {
	require.Equal(t, types.CanonicalLabel("television"),
		Normalize(types.TextResult("groq", "Television set")))

	parts := []types.ContentPart{
		{Type: "image_url"},
		{Type: types.PartTypeText, Text: "  Printer"},
		{Type: types.PartTypeText, Text: "ignored"},
	}
	require.Equal(t, types.CanonicalLabel("printer"), Normalize(types.PartsResult("gemini", parts)))

	require.Equal(t, types.LabelUnknown, Normalize(types.PartsResult("gemini", nil)))
	require.Equal(t, types.LabelUnknown, Normalize(types.PartsResult("gemini", []types.ContentPart{{Type: "blob", Text: "phone"}})))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Phone.", "a laptop", "", "<think>x</think>Cable", "UNKNOWN", "e-waste!"}
	for _, in := range inputs {
		once := NormalizeText(in)
		require.Equal(t, once, NormalizeText(string(once)), in)
	}
}
