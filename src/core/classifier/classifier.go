// Package classifier decides whether a canonical label names e-waste.
package classifier

import (
	"sort"
	"strings"

	"ewaste-server-go/src/core/types"
)

// DefaultKeywords 默认电子垃圾关键词. The list is closed: labels such as
// "router" that are not covered here classify as not-ewaste.
var DefaultKeywords = []string{
	"phone", "mobile", "charger", "laptop", "computer", "battery", "cable",
	"wire", "mouse", "keyboard", "monitor", "television", "tv", "printer",
	"tablet", "headphone", "earphone", "speaker", "camera", "remote",
	"console", "adapter", "circuit", "electronic",
}

// Vocabulary is an immutable set of e-waste substrings.
type Vocabulary struct {
	keywords []string
}

// NewVocabulary builds a vocabulary from keywords, lowercased and deduplicated.
// An empty list falls back to DefaultKeywords.
func NewVocabulary(keywords []string) *Vocabulary {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return &Vocabulary{keywords: out}
}

// Size reports how many keywords the vocabulary holds.
func (v *Vocabulary) Size() int { return len(v.keywords) }

// Keywords returns a copy of the keyword list.
func (v *Vocabulary) Keywords() []string {
	return append([]string(nil), v.keywords...)
}

// Classifier 电子垃圾分类器
type Classifier struct {
	vocab *Vocabulary
}

func New(vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = NewVocabulary(nil)
	}
	return &Classifier{vocab: vocab}
}

// Vocabulary returns the vocabulary in use.
func (c *Classifier) Vocabulary() *Vocabulary { return c.vocab }

// Classify reports ewaste when label contains any keyword.
func (c *Classifier) Classify(label types.CanonicalLabel) types.Detected {
	s := string(label)
	for _, k := range c.vocab.keywords {
		if strings.Contains(s, k) {
			return types.DetectedEwaste
		}
	}
	return types.DetectedNotEwaste
}
