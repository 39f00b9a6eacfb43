package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
)

func TestPartsFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role: "model",
					Parts: []genai.Part{
						genai.Text("Mobile"),
						genai.ImageData("png", []byte{1, 2, 3}),
						genai.Text("phone"),
					},
				},
			},
		},
	}

	parts, err := partsFromResponse(resp)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	require.Equal(t, types.ContentPart{Type: types.PartTypeText, Text: "Mobile"}, parts[0])
	require.NotEqual(t, types.PartTypeText, parts[1].Type)
	require.Equal(t, "phone", parts[2].Text)
}

func TestPartsFromEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := partsFromResponse(tt.resp)
			require.Error(t, err)
		})
	}
}

func TestInitializeRequiresKey(t *testing.T) {
	p, err := NewProvider(&recognizer.Config{Name: "gemini"}, recognizer.Deps{})
	require.NoError(t, err)
	require.Error(t, p.Initialize())
	require.NoError(t, p.Cleanup())
}

func TestRecognizeWithoutImage(t *testing.T) {
	p := &Provider{config: &recognizer.Config{Name: "gemini"}}
	_, err := p.Recognize(context.Background(), recognizer.Input{})
	require.True(t, apperrors.IsKind(err, apperrors.KindProvider))
}
