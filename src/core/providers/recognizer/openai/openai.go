package openai

import (
	"context"
	"fmt"
	"strings"

	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"

	"github.com/sashabaranov/go-openai"
)

const defaultMaxTokens = 10

// Provider speaks the OpenAI chat-completions protocol. Groq, the Hugging Face
// router and OpenAI itself are all instances of this type with different urls.
type Provider struct {
	config    *recognizer.Config
	client    *openai.Client
	maxTokens int
}

func init() {
	recognizer.Register("openai", NewProvider)
}

// NewProvider 创建OpenAI兼容的识别提供者
func NewProvider(config *recognizer.Config, _ recognizer.Deps) (recognizer.Provider, error) {
	p := &Provider{
		config:    config,
		maxTokens: config.MaxTokens,
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}
	return p, nil
}

func (p *Provider) Name() string { return p.config.Name }

func (p *Provider) NeedsImage() bool { return true }

// Initialize 初始化客户端
func (p *Provider) Initialize() error {
	if p.config.APIKey == "" {
		return fmt.Errorf("recognizer %s: missing api key", p.config.Name)
	}
	if p.config.ModelName == "" {
		return fmt.Errorf("recognizer %s: missing model_name", p.config.Name)
	}

	clientConfig := openai.DefaultConfig(p.config.APIKey)
	if p.config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(p.config.BaseURL, "/")
	}
	p.client = openai.NewClientWithConfig(clientConfig)
	return nil
}

func (p *Provider) Cleanup() error {
	return nil
}

// Recognize sends the image with the fixed instruction and returns the raw answer.
func (p *Provider) Recognize(ctx context.Context, in recognizer.Input) (types.RecognitionResult, error) {
	if err := recognizer.RequireImage(p.config.Name, in); err != nil {
		return types.RecognitionResult{}, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: recognizer.Instruction,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: recognizer.UserPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    recognizer.DataURL(in.Image),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		Temperature: float32(p.config.Temperature),
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "response has no choices", nil)
	}

	msg := resp.Choices[0].Message
	if len(msg.MultiContent) > 0 {
		parts := make([]types.ContentPart, 0, len(msg.MultiContent))
		for _, part := range msg.MultiContent {
			parts = append(parts, types.ContentPart{Type: string(part.Type), Text: part.Text})
		}
		return types.PartsResult(p.config.Name, parts), nil
	}
	return types.TextResult(p.config.Name, msg.Content), nil
}
