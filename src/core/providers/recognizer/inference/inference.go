package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
)

// Provider posts the raw image to a hosted inference endpoint, for example a
// Hugging Face image-to-text or image-classification model.
type Provider struct {
	config     *recognizer.Config
	httpClient *http.Client
}

// prediction covers the shapes inference endpoints answer with. Captioning
// models set generated_text, classifiers set label. Pointers tell an empty
// caption apart from a missing one.
type prediction struct {
	GeneratedText *string `json:"generated_text"`
	Label         *string `json:"label"`
	Score         float64 `json:"score"`
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

func init() {
	recognizer.Register("inference", NewProvider)
}

// NewProvider 创建推理端点识别提供者
func NewProvider(config *recognizer.Config, _ recognizer.Deps) (recognizer.Provider, error) {
	return &Provider{config: config}, nil
}

func (p *Provider) Name() string { return p.config.Name }

func (p *Provider) NeedsImage() bool { return true }

func (p *Provider) Initialize() error {
	if p.config.BaseURL == "" {
		return fmt.Errorf("recognizer %s: missing url", p.config.Name)
	}
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(in.Image.Data))
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "build request", err)
	}
	req.Header.Set("Content-Type", in.Image.MIMEType)
	req.Header.Set("Accept", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, "call endpoint", err)
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

	text, err := parseResponse(raw)
	if err != nil {
		return types.RecognitionResult{}, recognizer.ProviderError(p.config.Name, err.Error(), nil)
	}
	return types.TextResult(p.config.Name, text), nil
}

// parseResponse accepts [{"generated_text":..}], {"generated_text":..} and the
// classifier form [{"label":..,"score":..}], taking the first entry.
func parseResponse(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var list []prediction
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
	} else {
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(eb.Error) > 0 && string(eb.Error) != "null" {
			return "", fmt.Errorf("endpoint error: %s", string(eb.Error))
		}
		var one prediction
		if err := json.Unmarshal(raw, &one); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		list = []prediction{one}
	}

	if len(list) == 0 {
		return "", fmt.Errorf("response has no predictions")
	}
	first := list[0]
	if first.GeneratedText != nil && *first.GeneratedText != "" {
		return *first.GeneratedText, nil
	}
	if first.Label != nil && *first.Label != "" {
		return *first.Label, nil
	}
	if first.GeneratedText != nil || first.Label != nil {
		// the model answered with nothing; the normalizer maps it to unknown
		return "", nil
	}
	return "", fmt.Errorf("response has no generated_text")
}
