package types

// ResponseShape is the closed set of caption shapes providers answer with.
type ResponseShape int

const (
	// ShapeText is a single caption string.
	ShapeText ResponseShape = iota
	// ShapeParts is an ordered list of typed content segments.
	ShapeParts
)

// PartTypeText marks a content part carrying caption text.
const PartTypeText = "text"

// ContentPart is one segment of a multi-part provider answer.
type ContentPart struct {
	Type string
	Text string
}

// RecognitionResult is the raw output of one provider call.
type RecognitionResult struct {
	Provider string // diagnostics only
	Shape    ResponseShape
	Text     string
	Parts    []ContentPart
}

// TextResult builds a ShapeText result.
func TextResult(provider, text string) RecognitionResult {
	return RecognitionResult{Provider: provider, Shape: ShapeText, Text: text}
}

// PartsResult builds a ShapeParts result.
func PartsResult(provider string, parts []ContentPart) RecognitionResult {
	return RecognitionResult{Provider: provider, Shape: ShapeParts, Parts: parts}
}

// CanonicalLabel is a single lowercase token without whitespace.
type CanonicalLabel string

// LabelUnknown is produced when normalization yields nothing.
const LabelUnknown CanonicalLabel = "unknown"

// Detected is the verdict value returned across the HTTP boundary.
type Detected string

const (
	DetectedEwaste    Detected = "ewaste"
	DetectedNotEwaste Detected = "not-ewaste"
	DetectedError     Detected = "error"
)

// Verdict pairs the detection outcome with the label or error tag behind it.
type Verdict struct {
	Detected Detected `json:"detected"`
	Caption  string   `json:"caption"`
}

// Error tags reported in Verdict.Caption when Detected is DetectedError.
const (
	TagInvalidImage      = "invalid-image"
	TagUnsupportedFormat = "unsupported-format"
	TagTooSmallImage     = "too-small-image"
	TagBadImageData      = "bad-image-data"
	TagAIError           = "ai-error"
	TagMethodNotAllowed  = "method-not-allowed"
	TagUnauthorized      = "unauthorized"
)

// ErrorVerdict builds the error response for tag.
func ErrorVerdict(tag string) Verdict {
	return Verdict{Detected: DetectedError, Caption: tag}
}
