package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
)

const defaultModel = "gemini-1.5-flash"

// Provider calls Gemini through the generative-ai SDK.
type Provider struct {
	config *recognizer.Config
	client *genai.Client
	model  *genai.GenerativeModel
}

func init() {
	recognizer.Register("gemini", NewProvider)
}

// NewProvider 创建Gemini识别提供者
func NewProvider(config *recognizer.Config, _ recognizer.Deps) (recognizer.Provider, error) {
	return &Provider{config: config}, nil
}

func (p *Provider) Name() string { return p.config.Name }

func (p *Provider) NeedsImage() bool { return true }

// Initialize creates the client and the model handle once.
func (p *Provider) Initialize() error {
	if p.config.APIKey == "" {
		return fmt.Errorf("recognizer %s: missing api key", p.config.Name)
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(p.config.APIKey))
	if err != nil {
		return fmt.Errorf("recognizer %s: create client: %w", p.config.Name, err)
	}

	name := p.config.ModelName
	if name == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(float32(p.config.Temperature))
	if p.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(p.config.MaxTokens))
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(recognizer.Instruction)},
	}

	p.client = client
	p.model = model
	return nil
}

// Cleanup 关闭客户端
func (p *Provider) Cleanup() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *Provider) Recognize(ctx context.Context, in recognizer.Input) (types.RecognitionResult, error) {
	if err := recognizer.RequireImage(p.config.Name, in); err != nil {
		return types.RecognitionResult{}, err
	}

	resp, err := p.model.GenerateContent(ctx,
		genai.Text(recognizer.UserPrompt),
		genai.ImageData(in.Image.Format, in.Image.Data),
	)
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "generate content failed", err)
	}

	parts, err := partsFromResponse(resp)
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, err.Error(), nil)
	}
	return types.PartsResult(p.config.Name, parts), nil
}

// partsFromResponse flattens the first candidate. Only genai.Text parts are
// reported as text; anything else keeps its Go type name so the normalizer skips it.
func partsFromResponse(resp *genai.GenerateContentResponse) ([]types.ContentPart, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("response has no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil, fmt.Errorf("candidate has no content")
	}

	parts := make([]types.ContentPart, 0, len(content.Parts))
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, types.ContentPart{Type: types.PartTypeText, Text: string(text)})
			continue
		}
		parts = append(parts, types.ContentPart{Type: fmt.Sprintf("%T", part)})
	}
	return parts, nil
}
