package recognizer

import (
	"context"
	"encoding/base64"
	"strings"

	"ewaste-server-go/src/configs"
	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/image"
	"ewaste-server-go/src/core/providers"
	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
)

// Input is what the pipeline hands a provider. Image is already prepared
// and is nil when the provider does not need one and the caller sent none.
type Input struct {
	Image *image.Prepared
	Item  string
}

// Provider turns an image (or a manual label) into a raw caption.
type Provider interface {
	providers.Provider
	Name() string
	// NeedsImage reports whether Recognize requires a validated image.
	NeedsImage() bool
	Recognize(ctx context.Context, in Input) (types.RecognitionResult, error)
}

// Config 识别提供者配置
type Config struct {
	Name        string
	Type        string
	ModelName   string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Items       []string
}

// Deps are the process-wide collaborators shared by every provider.
type Deps struct {
	Logger *utils.Logger
}

// ConfigFrom converts a YAML entry into a provider Config.
func ConfigFrom(name string, rc configs.RecognizerConfig) *Config {
	return &Config{
		Name:        name,
		Type:        strings.ToLower(rc.Type),
		ModelName:   rc.ModelName,
		BaseURL:     rc.BaseURL,
		APIKey:      rc.ResolveAPIKey(),
		Temperature: rc.Temperature,
		MaxTokens:   rc.MaxTokens,
		Items:       rc.Items,
	}
}

// Instruction is the fixed system prompt for vision-LLM providers.
const Instruction = `You identify the single main object in a photo for an e-waste collection service.
Answer with exactly ONE lowercase word naming the object, for example: phone, smartphone, laptop, computer, charger, battery, cable, mouse, keyboard, monitor, television, printer, tablet, headphones, speaker, camera, remote, router, bottle, paper, cup, book, shoe.
No punctuation. No explanation. No sentences.
If you are uncertain, still answer with your best one-word guess. Never refuse.`

// UserPrompt accompanies the image in the user turn.
const UserPrompt = "What is the main object in this image? One word."

const opRecognize = "recognizer.recognize"

// ProviderError wraps an upstream failure; callers only ever see the ai-error tag.
func ProviderError(provider, message string, err error) error {
	if err == nil {
		return apperrors.New(apperrors.KindProvider, opRecognize, types.TagAIError, provider+": "+message)
	}
	return apperrors.Wrap(apperrors.KindProvider, opRecognize, types.TagAIError, provider+": "+message, err)
}

// RequireImage fails with a provider error when in carries no image.
func RequireImage(provider string, in Input) error {
	if in.Image == nil || len(in.Image.Data) == 0 {
		return ProviderError(provider, "no image supplied", nil)
	}
	return nil
}

// DataURL renders a prepared image as a data URL for chat-style APIs.
func DataURL(img *image.Prepared) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
