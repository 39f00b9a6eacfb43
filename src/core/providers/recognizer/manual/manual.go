package manual

import (
	"context"
	"strings"

	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
)

// DefaultItems is the known-items table used when the config lists none.
var DefaultItems = []string{
	"phone", "mobile", "smartphone", "laptop", "computer", "charger", "battery",
	"cable", "mouse", "keyboard", "monitor", "television", "tv", "printer",
	"tablet", "headphones", "speaker", "camera", "remote", "router",
	"bottle", "paper", "cup", "book", "shoe",
}

// Provider makes no network call; the caller names the item.
type Provider struct {
	config *recognizer.Config
	items  map[string]struct{}
}

func init() {
	recognizer.Register("manual", NewProvider)
}

// NewProvider 创建手动识别提供者
func NewProvider(config *recognizer.Config, _ recognizer.Deps) (recognizer.Provider, error) {
	return &Provider{config: config}, nil
}

func (p *Provider) Name() string { return p.config.Name }

func (p *Provider) NeedsImage() bool { return false }

func (p *Provider) Initialize() error {
	list := p.config.Items
	if len(list) == 0 {
		list = DefaultItems
	}
	p.items = make(map[string]struct{}, len(list))
	for _, item := range list {
		if item = canonicalItem(item); item != "" {
			p.items[item] = struct{}{}
		}
	}
	return nil
}

func (p *Provider) Cleanup() error {
	return nil
}

// Recognize returns the item when it is in the table and "unknown" otherwise.
func (p *Provider) Recognize(_ context.Context, in recognizer.Input) (types.RecognitionResult, error) {
	item := canonicalItem(in.Item)
	if _, ok := p.items[item]; !ok {
		item = string(types.LabelUnknown)
	}
	return types.TextResult(p.config.Name, item), nil
}

// canonicalItem lowercases s and joins its words with hyphens, so
// "AC Adapter" becomes "ac-adapter" and survives normalization whole.
func canonicalItem(s string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if w = utils.TrimPunctuation(w); w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, "-")
}
