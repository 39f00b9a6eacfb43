package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
)

const defaultBaseURL = "http://localhost:11434"

// ChatRequest Ollama /api/chat 请求结构
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// Message Ollama消息结构. Images are bare base64, without a data URL prefix.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatResponse Ollama响应结构
type ChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// Provider runs a vision model on a local Ollama server.
type Provider struct {
	config     *recognizer.Config
	baseURL    string
	httpClient *http.Client
}

func init() {
	recognizer.Register("ollama", NewProvider)
}

// NewProvider 创建Ollama识别提供者
func NewProvider(config *recognizer.Config, _ recognizer.Deps) (recognizer.Provider, error) {
	return &Provider{config: config}, nil
}

func (p *Provider) Name() string { return p.config.Name }

func (p *Provider) NeedsImage() bool { return true }

// Initialize Ollama不需要API key，只需要BaseURL
func (p *Provider) Initialize() error {
	if p.config.ModelName == "" {
		return fmt.Errorf("recognizer %s: missing model_name", p.config.Name)
	}
	p.baseURL = strings.TrimSuffix(p.config.BaseURL, "/")
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	// deadlines come from the request context
	p.httpClient = &http.Client{}
	return nil
}

func (p *Provider) Cleanup() error {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return nil
}

func (p *Provider) Recognize(ctx context.Context, in recognizer.Input) (types.RecognitionResult, error) {
	if err := recognizer.RequireImage(p.config.Name, in); err != nil {
		return types.RecognitionResult{}, err
	}

	options := map[string]interface{}{
		"temperature": p.config.Temperature,
	}
	if p.config.MaxTokens > 0 {
		options["num_predict"] = p.config.MaxTokens
	}
	body, err := json.Marshal(ChatRequest{
		Model: p.config.ModelName,
		Messages: []Message{
			{Role: "system", Content: recognizer.Instruction},
			{
				Role:    "user",
				Content: recognizer.UserPrompt,
				Images:  []string{base64.StdEncoding.EncodeToString(in.Image.Data)},
			},
		},
		Stream:  false,
		Options: options,
	})
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "call ollama", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	var out ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "decode response", err)
	}
	if out.Error != "" {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, out.Error, nil)
	}
	return types.TextResult(p.config.Name, out.Message.Content), nil
}
